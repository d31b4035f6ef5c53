package auth

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteConfirmed bool

var DeleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Delete your account and every item, template and setting",
	Long: `Deletes the account and all of its data. There is no undo; take a
snapshot first if you may want the data back.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if !deleteConfirmed {
			fmt.Print("Type the account username to confirm: ")
			var typed string
			_, _ = fmt.Scanln(&typed)
			current := app.Backend.CurrentUser()
			if current == nil || typed != current.Username {
				return fmt.Errorf("confirmation did not match, nothing deleted")
			}
		}

		if err := app.Backend.DeleteAccount(cmd.Context()); err != nil {
			return fmt.Errorf("delete account failed: %w", err)
		}
		fmt.Println("Account deleted.")
		return nil
	},
}

func init() {
	DeleteAccountCmd.Flags().BoolVar(&deleteConfirmed, "yes", false, "skip the confirmation prompt")
}
