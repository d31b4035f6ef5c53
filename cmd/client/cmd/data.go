package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/internal/app/client/vault"
)

// userDataPorter is the embedded backend's whole-partition surface. The
// remote backend does not implement it; server data moves via the API.
type userDataPorter interface {
	ExportUserData(ctx context.Context) (*vault.UserData, error)
	ImportUserData(ctx context.Context, data *vault.UserData) error
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write your items, profile and settings to a JSON file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		porter, ok := app.Backend.(userDataPorter)
		if !ok {
			return fmt.Errorf("export needs embedded mode")
		}

		data, err := porter.ExportUserData(cmd.Context())
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		if exportOut == "" {
			_, err := os.Stdout.Write(append(out, '\n'))
			return err
		}
		if err := os.WriteFile(exportOut, out, 0600); err != nil {
			return err
		}
		color.Green("Exported %d items to %s", len(data.Items), exportOut)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace your data with the contents of an export file",
	Long: `Replaces every item of the signed-in user with the file contents,
then updates profile and settings. Other users' data is untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		porter, ok := app.Backend.(userDataPorter)
		if !ok {
			return fmt.Errorf("import needs embedded mode")
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var data vault.UserData
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		if err := porter.ImportUserData(cmd.Context(), &data); err != nil {
			return err
		}
		color.Green("Imported %d items", len(data.Items))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
