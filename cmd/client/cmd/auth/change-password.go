package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/internal/domain/user"
)

var ChangePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the account password",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		oldPassword, err := readPassword("Current password: ")
		if err != nil {
			return err
		}
		newPassword, err := readPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Repeat new password: ")
		if err != nil {
			return err
		}
		if newPassword != confirm {
			return fmt.Errorf("passwords do not match")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Backend.ChangePassword(ctx, oldPassword, newPassword); err != nil {
			switch {
			case errors.Is(err, user.ErrInvalidAuth):
				return fmt.Errorf("current password is wrong")
			case errors.Is(err, user.ErrInvalidInput):
				return fmt.Errorf("new password rejected: %w", err)
			}
			return fmt.Errorf("change password failed: %w", err)
		}

		color.Green("Password changed")
		return nil
	},
}
