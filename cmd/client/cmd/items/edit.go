package items

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/internal/domain/item"
)

var (
	editTitle    string
	editDesc     string
	editStatus   string
	editPriority string
	editTags     []string
	editDue      string
	editStart    string
	editEnd      string
)

var EditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of an item",
	Long: `Update only the fields named by flags; everything else is left
alone. Moving an event's start or end re-checks schedule conflicts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		var update item.Update
		flags := cmd.Flags()
		if flags.Changed("title") {
			update.Title = &editTitle
		}
		if flags.Changed("desc") {
			update.Description = &editDesc
		}
		if flags.Changed("status") {
			update.Status = &editStatus
		}
		if flags.Changed("priority") {
			update.Priority = &editPriority
		}
		if flags.Changed("tag") {
			update.Tags = &editTags
		}
		if flags.Changed("due") {
			due, err := parseWhen(editDue)
			if err != nil {
				return err
			}
			update.DueDate = &due
		}
		if flags.Changed("start") {
			start, err := parseWhen(editStart)
			if err != nil {
				return err
			}
			update.StartTime = &start
		}
		if flags.Changed("end") {
			end, err := parseWhen(editEnd)
			if err != nil {
				return err
			}
			update.EndTime = &end
		}

		updated, err := app.Backend.UpdateItem(cmd.Context(), args[0], update)
		if err != nil {
			if errors.Is(err, item.ErrNotFound) {
				return fmt.Errorf("no item %s", args[0])
			}
			return err
		}

		color.Green("Updated %s", shortID(updated.ID))
		if updated.HasConflict {
			color.Yellow("Warning: this event overlaps an existing one")
		}
		return nil
	},
}

func init() {
	EditCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	EditCmd.Flags().StringVar(&editDesc, "desc", "", "new description")
	EditCmd.Flags().StringVarP(&editStatus, "status", "s", "", "new status")
	EditCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "new priority")
	EditCmd.Flags().StringSliceVar(&editTags, "tag", nil, "replace tags, repeatable")
	EditCmd.Flags().StringVar(&editDue, "due", "", "new due date")
	EditCmd.Flags().StringVar(&editStart, "start", "", "new event start")
	EditCmd.Flags().StringVar(&editEnd, "end", "", "new event end")
}
