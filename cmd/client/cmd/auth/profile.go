package auth

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/internal/domain/user"
)

var (
	profileUsername string
	profileEmail    string
	profilePhone    string
)

var ProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update profile fields",
	Long:  `Changes only the fields named by flags; the rest stay as they are.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		var update user.ProfileUpdate
		flags := cmd.Flags()
		if flags.Changed("username") {
			update.Username = &profileUsername
		}
		if flags.Changed("email") {
			update.Email = &profileEmail
		}
		if flags.Changed("phone") {
			update.Phone = &profilePhone
		}
		if update.Username == nil && update.Email == nil && update.Phone == nil {
			return fmt.Errorf("nothing to change: pass --username, --email or --phone")
		}

		profile, err := app.Backend.UpdateProfile(cmd.Context(), update)
		if err != nil {
			return fmt.Errorf("update profile failed: %w", err)
		}

		color.Green("Profile updated: %s", profile.Username)
		return nil
	},
}

func init() {
	ProfileCmd.Flags().StringVar(&profileUsername, "username", "", "new username")
	ProfileCmd.Flags().StringVar(&profileEmail, "email", "", "new email")
	ProfileCmd.Flags().StringVar(&profilePhone, "phone", "", "new phone")
}
