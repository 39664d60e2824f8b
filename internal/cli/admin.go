package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users (admin)",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			users, err := c.Users.List(cmd.Context())
			if err != nil {
				return a.fail("users list", err)
			}
			return a.printJSON(users)
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle-active ID",
		Short: "Enable or disable a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return a.fail("users toggle-active", err)
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			user, err := c.Users.ToggleActive(cmd.Context(), id)
			if err != nil {
				return a.fail("users toggle-active", err)
			}
			return a.printJSON(user)
		},
	}

	cmd.AddCommand(list, toggle)
	return cmd
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show site statistics (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			d, err := c.Users.Dashboard(cmd.Context())
			if err != nil {
				return a.fail("dashboard", err)
			}
			return a.printJSON(d)
		},
	}
}
