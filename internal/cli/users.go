package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/luminher/luminher-api/internal/guard"
	"github.com/luminher/luminher-api/internal/models"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (admin only)",
	}
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersCreateCmd(app))
	cmd.AddCommand(newUsersDeleteCmd(app))
	cmd.AddCommand(newUsersSetRoleCmd(app))
	cmd.AddCommand(newUsersResetLinkCmd(app))
	return withView(cmd, guard.ViewAdmin)
}

func newUsersListCmd(app *App) *cobra.Command {
	var req models.ListUsersRequest

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List users, one page at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.API.ListUsers(cmd.Context(), req)
			if err != nil {
				return err
			}
			if len(page.Users) == 0 {
				fmt.Fprintln(app.Out, "No users found.")
				return nil
			}

			w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "UID\tEMAIL\tNAME\tADMIN\tCREATED")
			for _, u := range page.Users {
				created := "-"
				if u.CreatedAt != nil {
					created = u.CreatedAt.Format(time.DateOnly)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", u.UID, u.Email, u.DisplayName, u.Admin, created)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if page.NextPageToken != "" {
				fmt.Fprintf(app.Out, "\nMore users: luminctl users ls --page-token %s\n", page.NextPageToken)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&req.PageSize, "page-size", 0, "Users per page (default 20, max 1000)")
	cmd.Flags().StringVar(&req.PageToken, "page-token", "", "Token of the page to fetch")
	return cmd
}

func newUsersCreateCmd(app *App) *cobra.Command {
	var req models.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := app.API.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Created user %s\n", uid)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password (required)")
	cmd.Flags().StringVar(&req.DisplayName, "display-name", "", "Display name")
	cmd.Flags().BoolVar(&req.Admin, "admin", false, "Grant the admin role")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <uid>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.API.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Deleted user %s\n", args[0])
			return nil
		},
	}
}

func newUsersSetRoleCmd(app *App) *cobra.Command {
	var admin bool

	cmd := &cobra.Command{
		Use:   "set-role <uid>",
		Short: "Grant or revoke the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.API.SetUserRole(cmd.Context(), args[0], admin); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "User %s admin=%t\n", args[0], admin)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "Admin flag to set")
	_ = cmd.MarkFlagRequired("admin")
	return cmd
}

func newUsersResetLinkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-link <email>",
		Short: "Generate a password reset link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := app.API.GenerateResetLink(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Out, link)
			return nil
		},
	}
}

func newMetricsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show user totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.API.Metrics(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Total users: %d\nAdmin users: %d\n", m.TotalUsers, m.AdminUsers)
			return nil
		},
	}
	return withView(cmd, guard.ViewAdmin)
}

func newSignupsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signups",
		Short: "Show signups per day over the last 30 days",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.API.DailySignups(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Signups %s .. %s\n\n", s.Range.Start, s.Range.End)
			w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tCOUNT")
			for _, d := range s.Series {
				fmt.Fprintf(w, "%s\t%d\n", d.Date, d.Count)
			}
			return w.Flush()
		},
	}
	return withView(cmd, guard.ViewAdmin)
}
