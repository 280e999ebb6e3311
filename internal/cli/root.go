// Package cli implements the luminctl command tree.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/client"
	"github.com/luminher/luminher-api/internal/guard"
	"github.com/luminher/luminher-api/internal/models"
	"github.com/luminher/luminher-api/internal/session"
)

// viewAnnotation names the guarded view a command opens.
const viewAnnotation = "view"

// API is the part of client.Client the commands use.
type API interface {
	EnsureAdminClaim(ctx context.Context) (*models.EnsureAdminResult, error)
	ListUsers(ctx context.Context, req models.ListUsersRequest) (*models.UserPage, error)
	CreateUser(ctx context.Context, req models.CreateUserRequest) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	SetUserRole(ctx context.Context, uid string, admin bool) error
	GenerateResetLink(ctx context.Context, email string) (string, error)
	SharePlan(ctx context.Context, req models.SharePlanRequest) (string, error)
	ListSharedPlans(ctx context.Context) ([]client.PlanSummary, error)
	RatePlan(ctx context.Context, planID string, value float64) (float64, int, error)
	RemovePlan(ctx context.Context, planID string) error
	Metrics(ctx context.Context) (*models.UserMetrics, error)
	DailySignups(ctx context.Context) (*models.DailySignups, error)
}

// App carries the state shared by every command.
type App struct {
	Store  *session.Store
	Guard  *guard.Guard
	API    API
	Out    io.Writer
	Logger *zap.Logger
}

// NewRootCmd builds the luminctl command tree around app.
func NewRootCmd(app *App, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "luminctl",
		Short: "luminctl - administer the luminher backend",
		Long: `luminctl talks to the luminher API.

Sign in with an ID token issued by the identity provider, then manage users,
inspect signup metrics or work with shared plans.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.checkView(cmd)
		},
	}
	rootCmd.SetOut(app.Out)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(app.Out, "luminctl version %s\n", version)
		},
	})
	rootCmd.AddCommand(newLoginCmd(app))
	rootCmd.AddCommand(newLogoutCmd(app))
	rootCmd.AddCommand(newWhoamiCmd(app))
	rootCmd.AddCommand(newUsersCmd(app))
	rootCmd.AddCommand(newMetricsCmd(app))
	rootCmd.AddCommand(newSignupsCmd(app))
	rootCmd.AddCommand(newPlansCmd(app))
	return rootCmd
}

// checkView runs the route guard for the view the command (or its nearest parent) opens.
func (a *App) checkView(cmd *cobra.Command) error {
	view := ""
	for c := cmd; c != nil; c = c.Parent() {
		if v, ok := c.Annotations[viewAnnotation]; ok {
			view = v
			break
		}
	}
	if view == "" {
		return nil
	}
	d := a.Guard.Check(view)
	if d.Allow {
		return nil
	}
	a.Logger.Debug("Command blocked by route guard", zap.String("command", cmd.CommandPath()), zap.String("view", view))
	switch d.Redirect {
	case guard.ViewLogin:
		return fmt.Errorf("%s: %s; run 'luminctl login' first", cmd.CommandPath(), d.Reason)
	default:
		return fmt.Errorf("%s: %s", cmd.CommandPath(), d.Reason)
	}
}

func withView(cmd *cobra.Command, view string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[viewAnnotation] = view
	return cmd
}
