package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/luminher/luminher-api/internal/guard"
	"github.com/luminher/luminher-api/internal/models"
)

func newPlansCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Share, browse and rate plans",
	}
	cmd.AddCommand(newPlansListCmd(app))
	cmd.AddCommand(newPlansShareCmd(app))
	cmd.AddCommand(newPlansRateCmd(app))
	cmd.AddCommand(newPlansRemoveCmd(app))
	return withView(cmd, guard.ViewPlans)
}

func newPlansListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List shared plans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.API.ListSharedPlans(cmd.Context())
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(app.Out, "No shared plans yet.")
				return nil
			}
			w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tOWNER\tAVG\tRATINGS\tSHARED")
			for _, p := range plans {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%d\t%s\n",
					p.ID, p.Title, p.OwnerName, p.Average, p.Count, p.CreatedAt.Format(time.DateOnly))
			}
			return w.Flush()
		},
	}
}

func newPlansShareCmd(app *App) *cobra.Command {
	var title, payloadFile string

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.SharePlanRequest{Title: title}
			if payloadFile != "" {
				raw, err := os.ReadFile(payloadFile)
				if err != nil {
					return fmt.Errorf("failed to read payload: %w", err)
				}
				if err := json.Unmarshal(raw, &req.Payload); err != nil {
					return fmt.Errorf("payload must be a JSON object: %w", err)
				}
			}
			id, err := app.API.SharePlan(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Shared plan %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Plan title")
	cmd.Flags().StringVar(&payloadFile, "payload-file", "", "JSON file holding the plan body")
	return cmd
}

func newPlansRateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <plan-id> <1-5>",
		Short: "Rate a plan; out-of-range values are clamped",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("rating must be a number: %w", err)
			}
			avg, count, err := app.API.RatePlan(cmd.Context(), args[0], value)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Plan %s: average %.2f over %d rating(s)\n", args[0], avg, count)
			return nil
		},
	}
}

func newPlansRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <plan-id>",
		Short: "Remove one of your plans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.API.RemovePlan(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Removed plan %s\n", args[0])
			return nil
		},
	}
}
