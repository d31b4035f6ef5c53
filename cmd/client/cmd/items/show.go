package items

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/internal/domain/item"
)

var ShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one item in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		it, err := app.Backend.ItemByID(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, item.ErrNotFound) {
				return fmt.Errorf("no item %s", args[0])
			}
			return err
		}

		printItem(it)
		return nil
	},
}

var DoneCmd = &cobra.Command{
	Use:   "done <id>...",
	Short: "Mark items completed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		status := item.StatusCompleted
		update := item.Update{Status: &status}

		if len(args) == 1 {
			if _, err := app.Backend.UpdateItem(cmd.Context(), args[0], update); err != nil {
				if errors.Is(err, item.ErrNotFound) {
					return fmt.Errorf("no item %s", args[0])
				}
				return err
			}
			color.Green("Done: %s", args[0])
			return nil
		}

		updated, err := app.Backend.BulkUpdate(cmd.Context(), args, update)
		if err != nil {
			return err
		}
		color.Green("Done: %d of %d", updated, len(args))
		return nil
	},
}

var RemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete an item",
	Long:    `Soft-deletes the item: it disappears from every view but stays restorable from a snapshot.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.Backend.DeleteItem(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, item.ErrNotFound) {
				return fmt.Errorf("no item %s", args[0])
			}
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var ArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Move an item out of the active views",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.Backend.ArchiveItem(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, item.ErrNotFound) {
				return fmt.Errorf("no item %s", args[0])
			}
			return err
		}
		fmt.Printf("Archived %s\n", args[0])
		return nil
	},
}

var UnarchiveCmd = &cobra.Command{
	Use:   "unarchive <id>",
	Short: "Bring an archived item back",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.Backend.UnarchiveItem(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, item.ErrNotFound) {
				return fmt.Errorf("no item %s", args[0])
			}
			return err
		}
		fmt.Printf("Restored %s\n", args[0])
		return nil
	},
}
