package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cogniflow/internal/app/client"
)

var whoamiJSON bool

var WhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		profile, err := app.Backend.Profile(cmd.Context())
		if err != nil {
			if errors.Is(err, client.ErrUnauthenticated) {
				return fmt.Errorf("not signed in")
			}
			return err
		}

		if whoamiJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(profile)
		}

		fmt.Printf("Username: %s\n", profile.Username)
		fmt.Printf("ID:       %s\n", profile.ID)
		fmt.Printf("Role:     %s\n", profile.Role)
		if profile.Email != "" {
			fmt.Printf("Email:    %s\n", profile.Email)
		}
		if profile.Phone != "" {
			fmt.Printf("Phone:    %s\n", profile.Phone)
		}
		fmt.Printf("Since:    %s\n", profile.CreatedAt.Format("2006-01-02"))
		return nil
	},
}

func init() {
	WhoamiCmd.Flags().BoolVar(&whoamiJSON, "json", false, "print as JSON")
}
