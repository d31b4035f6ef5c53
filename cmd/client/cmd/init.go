package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/cmd/client/cmd/auth"
	backupcmd "cogniflow/cmd/client/cmd/backup"
	"cogniflow/cmd/client/cmd/items"
	"cogniflow/cmd/client/cmd/settings"
	"cogniflow/cmd/client/cmd/templates"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection mode and the signed-in user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Printf("Mode:   %s\n", cfg.StorageMode)
		if cfg.IsRemote() {
			fmt.Printf("Server: %s\n", cfg.ServerAddress)
			if err := app.Backend.HealthCheck(cmd.Context()); err != nil {
				color.Red("Health: unreachable (%v)", err)
			} else {
				color.Green("Health: ok")
			}
		} else {
			fmt.Printf("Data:   %s\n", cfg.DataPath)
		}

		if u := app.Backend.CurrentUser(); u != nil {
			color.Green("User:   %s (%s)", u.Username, u.ID)
		} else {
			color.Yellow("User:   not signed in")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(auth.AuthCmd)
	auth.AuthCmd.AddCommand(auth.RegisterCmd)
	auth.AuthCmd.AddCommand(auth.LoginCmd)
	auth.AuthCmd.AddCommand(auth.LogoutCmd)
	auth.AuthCmd.AddCommand(auth.WhoamiCmd)
	auth.AuthCmd.AddCommand(auth.ChangePasswordCmd)
	auth.AuthCmd.AddCommand(auth.UsersCmd)
	auth.AuthCmd.AddCommand(auth.DeleteAccountCmd)
	auth.AuthCmd.AddCommand(auth.ProfileCmd)

	rootCmd.AddCommand(items.ItemsCmd)
	items.ItemsCmd.AddCommand(items.AddCmd)
	items.ItemsCmd.AddCommand(items.ListCmd)
	items.ItemsCmd.AddCommand(items.ShowCmd)
	items.ItemsCmd.AddCommand(items.EditCmd)
	items.ItemsCmd.AddCommand(items.DoneCmd)
	items.ItemsCmd.AddCommand(items.RemoveCmd)
	items.ItemsCmd.AddCommand(items.ArchiveCmd)
	items.ItemsCmd.AddCommand(items.UnarchiveCmd)
	items.ItemsCmd.AddCommand(items.SearchCmd)
	items.ItemsCmd.AddCommand(items.QueryCmd)
	items.ItemsCmd.AddCommand(items.UpcomingCmd)
	items.ItemsCmd.AddCommand(items.TodoCmd)
	items.ItemsCmd.AddCommand(items.InboxCmd)
	items.ItemsCmd.AddCommand(items.TagsCmd)
	items.ItemsCmd.AddCommand(items.CalendarCmd)
	items.ItemsCmd.AddCommand(items.HistoryCmd)

	rootCmd.AddCommand(templates.TemplatesCmd)
	templates.TemplatesCmd.AddCommand(templates.ListCmd)
	templates.TemplatesCmd.AddCommand(templates.CreateCmd)
	templates.TemplatesCmd.AddCommand(templates.UpdateCmd)
	templates.TemplatesCmd.AddCommand(templates.DeleteCmd)

	rootCmd.AddCommand(backupcmd.BackupCmd)
	backupcmd.BackupCmd.AddCommand(backupcmd.NowCmd)
	backupcmd.BackupCmd.AddCommand(backupcmd.ListCmd)
	backupcmd.BackupCmd.AddCommand(backupcmd.RestoreCmd)
	backupcmd.BackupCmd.AddCommand(backupcmd.ExportCmd)

	rootCmd.AddCommand(settings.SettingsCmd)
	settings.SettingsCmd.AddCommand(settings.ShowCmd)
	settings.SettingsCmd.AddCommand(settings.SetCmd)
	settings.SettingsCmd.AddCommand(settings.ResetCmd)
}
