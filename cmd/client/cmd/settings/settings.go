// Package settings reads and writes the per-user preference map.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/cmd/client/cmd/types"
	"cogniflow/internal/app/client"
	"cogniflow/internal/domain/user"
)

var SettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change preferences",
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if app == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return app, nil
}

var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print all settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		values, err := app.Backend.Settings(cmd.Context())
		if err != nil {
			return err
		}
		printSettings(values)
		return nil
	},
}

var SetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one setting",
	Long: `Sets a preference key. Values parse as JSON when possible, so
"true" becomes a boolean and "3" a number; anything else stays a string.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		updated, err := app.Backend.UpdateSettings(cmd.Context(), user.Settings{
			args[0]: parseValue(args[1]),
		})
		if err != nil {
			return err
		}

		color.Green("Set %s", args[0])
		printSettings(updated)
		return nil
	},
}

var ResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		values, err := app.Backend.ResetSettings(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("Settings reset.")
		printSettings(values)
		return nil
	},
}

func printSettings(values user.Settings) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		out, err := json.Marshal(values[k])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", k, err)
			continue
		}
		fmt.Printf("%s = %s\n", k, out)
	}
}

// parseValue keeps booleans and numbers typed across the JSON round trip.
func parseValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
