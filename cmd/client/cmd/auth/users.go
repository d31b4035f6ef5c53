package auth

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cogniflow/internal/app/client"
)

var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List all accounts (admin, remote mode)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		users, err := app.Backend.ListUsers(cmd.Context())
		if err != nil {
			if errors.Is(err, client.ErrNotSupportedInMode) {
				return fmt.Errorf("user listing needs remote mode")
			}
			var remote *client.RemoteError
			if errors.As(err, &remote) && remote.StatusCode == 403 {
				return fmt.Errorf("admin role required")
			}
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tROLE\tID\tSINCE")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				u.Username, u.Role, u.ID, u.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}
