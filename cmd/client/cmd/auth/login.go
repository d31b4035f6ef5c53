package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/internal/app/client"
	"cogniflow/internal/domain/user"
)

var (
	loginUsername string
	loginQuick    bool
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to CogniFlow",
	Long: `Authenticate against the configured backend.

The session is stored locally, so later commands do not ask again.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		username := loginUsername
		if username == "" {
			fmt.Print("Username: ")
			_, _ = fmt.Scanln(&username)
		}

		if loginQuick {
			profile, err := app.Backend.QuickLogin(cmd.Context(), username)
			if err != nil {
				if errors.Is(err, client.ErrNotSupportedInMode) {
					return fmt.Errorf("quick login needs embedded mode")
				}
				return fmt.Errorf("quick login failed: %w", err)
			}
			color.Green("Signed in as %s", profile.Username)
			return nil
		}

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		profile, err := app.Backend.Login(ctx, user.Credentials{
			Username: username,
			Password: password,
		})
		if err != nil {
			switch {
			case errors.Is(err, user.ErrInvalidAuth):
				return fmt.Errorf("invalid username or password")
			case errors.Is(err, client.ErrNetworkFailure):
				return fmt.Errorf("cannot reach server: %w", err)
			}
			return fmt.Errorf("login failed: %w", err)
		}

		color.Green("Signed in as %s", profile.Username)
		return nil
	},
}

func init() {
	LoginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	LoginCmd.Flags().BoolVar(&loginQuick, "quick", false, "re-enter a local account without a password (embedded mode)")
}
