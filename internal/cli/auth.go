package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/guard"
	"github.com/luminher/luminher-api/internal/models"
	"github.com/luminher/luminher-api/internal/session"
)

func newLoginCmd(app *App) *cobra.Command {
	var idToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an ID token",
		Long: `Sign in with an ID token issued by the identity provider.

The token is stored in the session file and sent with every callable. The server
verifies it on each call; luminctl only reads its claims to show who you are.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runLogin(cmd, idToken)
		},
	}
	cmd.Flags().StringVar(&idToken, "id-token", "", "ID token (required)")
	_ = cmd.MarkFlagRequired("id-token")
	return withView(cmd, guard.ViewLogin)
}

func (a *App) runLogin(cmd *cobra.Command, idToken string) error {
	user, err := userFromIDToken(idToken)
	if err != nil {
		return err
	}
	if err := a.Store.SignIn(user); err != nil {
		return err
	}

	res, err := a.API.EnsureAdminClaim(cmd.Context())
	if err != nil {
		// Signing in still works; the role shown may lag until the next login.
		a.Logger.Warn("ensureAdminClaim failed", zap.Error(err))
	} else if res.Admin != user.Admin {
		user.Admin = res.Admin
		if err := a.Store.SignIn(user); err != nil {
			return err
		}
	}

	snap := a.Store.Current()
	fmt.Fprintf(a.Out, "Signed in as %s <%s> (%s)\n", snap.User.Name, snap.User.Email, snap.Role)
	if res != nil && res.Updated {
		fmt.Fprintln(a.Out, "Admin role granted. Refresh your ID token to carry the new claim.")
	}
	return nil
}

// userFromIDToken reads the claims of an ID token without verifying it.
func userFromIDToken(raw string) (session.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return session.User{}, errors.New("id token is empty")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return session.User{}, fmt.Errorf("malformed id token: %w", err)
	}

	uid, _ := claims["user_id"].(string)
	if uid == "" {
		uid, _ = claims.GetSubject()
	}
	if uid == "" {
		return session.User{}, errors.New("id token carries no subject")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	admin, _ := claims[models.AdminClaim].(bool)

	return session.User{UID: uid, Email: email, Name: name, Admin: admin, IDToken: raw}, nil
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := app.Store.Current()
			if !snap.Authenticated() {
				fmt.Fprintln(app.Out, "Not signed in.")
				return nil
			}
			fmt.Fprintf(app.Out, "%s <%s>\nuid:  %s\nrole: %s\n", snap.User.Name, snap.User.Email, snap.User.UID, snap.Role)
			return nil
		},
	}
}
