// Package backup exposes the snapshot manager: take, list, export and
// restore local snapshots. Embedded mode only.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/cmd/client/cmd/types"
	"cogniflow/internal/app/client"
	"cogniflow/internal/app/client/backup"
)

var BackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot and restore the local database",
	Long: `Snapshots capture the whole local database as one portable JSON
document. Restoring replaces the local data with the snapshot contents.

Remote mode has no local database, so these commands refuse to run there.`,
}

func managerFrom(cmd *cobra.Command) (*backup.Manager, error) {
	mgr, _ := cmd.Context().Value(types.BackupManagerKey).(*backup.Manager)
	if mgr == nil {
		return nil, fmt.Errorf("backups need embedded mode")
	}
	return mgr, nil
}

var nowOut string

var NowCmd = &cobra.Command{
	Use:   "now",
	Short: "Take a snapshot immediately",
	RunE: func(cmd *cobra.Command, _ []string) error {
		mgr, err := managerFrom(cmd)
		if err != nil {
			return err
		}

		snap, err := mgr.TakeSnapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("snapshot failed: %w", err)
		}

		if nowOut != "" {
			if err := mgr.ExportToFile(snap.ID, nowOut); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			color.Green("Snapshot written to %s (%d bytes)", nowOut, snap.Size)
			return nil
		}
		color.Green("Snapshot %s taken (%d bytes)", snap.ID, snap.Size)
		return nil
	},
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List retained snapshots and snapshot files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		mgr, err := managerFrom(cmd)
		if err != nil {
			return err
		}

		if snaps := mgr.Snapshots(); len(snaps) > 0 {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSIZE\tCREATED")
			for _, s := range snaps {
				fmt.Fprintf(w, "%s\t%d\t%s\n", s.ID, s.Size, s.CreatedAt.Format("2006-01-02 15:04"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Println()
		}

		app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		return listSnapshotFiles(app.Config().Backup.DownloadDir)
	},
}

var RestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the local database with a snapshot file",
	Long: `Restores every item, template, setting and account from the file.
A snapshot that cannot be parsed leaves the database untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := managerFrom(cmd)
		if err != nil {
			return err
		}

		if err := mgr.RestoreFromFile(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		color.Green("Restored from %s", args[0])
		return nil
	},
}

var exportOut string

var ExportCmd = &cobra.Command{
	Use:   "export <snapshot-id>",
	Short: "Write a retained snapshot to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := managerFrom(cmd)
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("cogniflow-%s.json", args[0])
		}
		if err := mgr.ExportToFile(args[0], out); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		color.Green("Exported to %s", out)
		return nil
	},
}

func init() {
	NowCmd.Flags().StringVarP(&nowOut, "out", "o", "", "also write the snapshot to this file")
	ExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file")
}

// listSnapshotFiles prints the snapshot files under dir, newest first.
func listSnapshotFiles(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No snapshots yet.")
			return nil
		}
		return err
	}

	type fileRow struct {
		name string
		size int64
		mod  string
	}
	var rows []fileRow
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		rows = append(rows, fileRow{
			name: e.Name(),
			size: info.Size(),
			mod:  info.ModTime().Format("2006-01-02 15:04"),
		})
	}
	if len(rows) == 0 {
		fmt.Println("No snapshots yet.")
		return nil
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].mod > rows[j].mod })

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSIZE\tCREATED")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%s\n", filepath.Join(dir, r.name), r.size, r.mod)
	}
	return w.Flush()
}
