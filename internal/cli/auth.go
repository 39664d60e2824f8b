package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-cms-client/cms"
	cmserrors "github.com/jrsteele09/go-cms-client/internal/errors"
)

func (a *app) loginCmd() *cobra.Command {
	var (
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login USERNAME",
		Short: "Log in with a username or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			secret, err := a.readSecret(password, "Password")
			if err != nil {
				return a.fail("login", err)
			}
			user, err := c.Auth.Login(cmd.Context(), args[0], secret, remember)
			if err != nil {
				return a.fail("login", err)
			}
			a.logger.Info().Str("username", user.Username).Msg("logged in")
			return a.printJSON(user)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	cmd.Flags().BoolVar(&remember, "remember", false, "ask the backend for a persistent session")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "register USERNAME",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			secret, err := a.readSecret(password, "Password")
			if err != nil {
				return a.fail("register", err)
			}
			user, err := c.Auth.Register(cmd.Context(), args[0], email, secret)
			if err != nil {
				return a.fail("register", err)
			}
			return a.printJSON(user)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Auth.Logout(cmd.Context()); err != nil {
				return a.fail("logout", err)
			}
			return a.printJSON(cms.Message{Message: "Logged out"})
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			user, err := c.Auth.Me(cmd.Context())
			if err != nil {
				return a.fail("whoami", err)
			}
			return a.printJSON(user)
		},
	}
}

func (a *app) passwdCmd() *cobra.Command {
	var oldPassword, newPassword string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if oldPassword, err = a.readSecret(oldPassword, "Current password"); err != nil {
				return a.fail("passwd", err)
			}
			if newPassword, err = a.readSecret(newPassword, "New password"); err != nil {
				return a.fail("passwd", err)
			}
			if err := c.Auth.ChangePassword(cmd.Context(), oldPassword, newPassword); err != nil {
				return a.fail("passwd", err)
			}
			return a.printJSON(cms.Message{Message: "Password updated"})
		},
	}
	cmd.Flags().StringVar(&oldPassword, "old", "", "current password")
	cmd.Flags().StringVar(&newPassword, "new", "", "new password")
	return cmd
}

type statusReport struct {
	LoggedIn  bool       `json:"logged_in"`
	Admin     bool       `json:"admin"`
	User      *cms.User  `json:"user,omitempty"`
	ExpiresAt *time.Time `json:"access_token_expires_at,omitempty"`
	Expired   bool       `json:"access_token_expired"`
	Valid     *bool      `json:"valid,omitempty"`
}

func (a *app) statusCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Long:  "Show the stored session and when its access token expires. With --check the session is verified against the backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := a.client()
			if err != nil {
				return err
			}

			var report statusReport
			if report.LoggedIn, err = a.state.IsLoggedIn(ctx); err != nil {
				return a.fail("status", err)
			}
			if report.Admin, err = a.state.IsAdmin(ctx); err != nil {
				return a.fail("status", err)
			}
			if report.User, err = a.state.User(ctx); err != nil {
				return a.fail("status", err)
			}

			expiry, err := a.state.AccessTokenExpiry(ctx)
			switch {
			case cmserrors.Is(err, cmserrors.ErrNotLoggedIn):
			case err != nil:
				// Opaque tokens are still usable, only the expiry is unknown
				a.logger.Debug().Err(err).Msg("reading access token expiry")
			case !expiry.IsZero():
				report.ExpiresAt = &expiry
				report.Expired = !expiry.After(time.Now())
			}

			if check {
				valid, err := c.Auth.CheckAuth(ctx)
				if err != nil {
					return a.fail("status", err)
				}
				report.Valid = &valid
				if !valid {
					report = statusReport{Valid: &valid}
				}
			}
			return a.printJSON(report)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "verify the session with the backend")
	return cmd
}
