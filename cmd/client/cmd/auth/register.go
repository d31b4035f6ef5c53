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

var (
	registerUsername string
	registerEmail    string
	registerPhone    string
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	Long: `Create a CogniFlow account and sign in.

New accounts get the default quick-capture templates (daily log, meeting
minutes, shopping list) provisioned automatically.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		username := registerUsername
		if username == "" {
			fmt.Print("Username: ")
			_, _ = fmt.Scanln(&username)
		}

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Repeat password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		profile, err := app.Backend.Register(ctx, user.Registration{
			Username: username,
			Password: password,
			Email:    registerEmail,
			Phone:    registerPhone,
		})
		if err != nil {
			switch {
			case errors.Is(err, user.ErrAlreadyExists):
				return fmt.Errorf("username %q is taken", username)
			case errors.Is(err, user.ErrInvalidInput):
				return fmt.Errorf("invalid registration: %w", err)
			}
			return fmt.Errorf("registration failed: %w", err)
		}

		color.Green("Account created, signed in as %s", profile.Username)
		return nil
	},
}

func init() {
	RegisterCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "account username")
	RegisterCmd.Flags().StringVar(&registerEmail, "email", "", "contact email (optional)")
	RegisterCmd.Flags().StringVar(&registerPhone, "phone", "", "contact phone (optional)")
}
