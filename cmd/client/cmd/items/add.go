package items

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/internal/domain/item"
)

var (
	addType     string
	addTitle    string
	addDesc     string
	addPriority string
	addTags     []string
	addDue      string
	addStart    string
	addEnd      string
	addURL      string
	addSubItems []string
)

var AddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Capture a new item",
	Long: `Capture a note, task, event, link or checklist.

The free text becomes the title unless --title is given. Events take
--start and --end; overlapping events are flagged as conflicts.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		rawText := strings.Join(args, " ")
		title := addTitle
		if title == "" {
			title = rawText
		}
		if title == "" {
			return fmt.Errorf("nothing to capture: pass text or --title")
		}

		draft := item.Draft{
			RawText:     rawText,
			Type:        item.Kind(addType),
			Title:       title,
			Description: addDesc,
			Priority:    addPriority,
			Tags:        addTags,
			URL:         addURL,
		}

		if addDue != "" {
			due, err := parseWhen(addDue)
			if err != nil {
				return err
			}
			draft.DueDate = &due
		}
		if addStart != "" {
			start, err := parseWhen(addStart)
			if err != nil {
				return err
			}
			draft.StartTime = &start
		}
		if addEnd != "" {
			end, err := parseWhen(addEnd)
			if err != nil {
				return err
			}
			draft.EndTime = &end
		}

		for i, text := range addSubItems {
			draft.SubItems = append(draft.SubItems, item.SubItem{
				ID:     fmt.Sprintf("%d", i+1),
				Text:   text,
				Status: item.SubItemPending,
			})
		}
		if len(draft.SubItems) > 0 && draft.Type == "" {
			draft.Type = item.KindCollection
		}
		if draft.Type == "" {
			draft.Type = item.KindNote
		}

		created, err := app.Backend.CreateItem(cmd.Context(), draft)
		if err != nil {
			if errors.Is(err, item.ErrInvalidInput) {
				return fmt.Errorf("invalid item: %w", err)
			}
			return fmt.Errorf("create failed: %w", err)
		}

		color.Green("Captured %s %s", created.Type, shortID(created.ID))
		if created.HasConflict {
			color.Yellow("Warning: this event overlaps an existing one")
		}
		return nil
	},
}

func init() {
	AddCmd.Flags().StringVarP(&addType, "type", "t", "", "item kind (task, event, note, data, url, collection)")
	AddCmd.Flags().StringVar(&addTitle, "title", "", "item title")
	AddCmd.Flags().StringVar(&addDesc, "desc", "", "longer description")
	AddCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "priority (low, medium, high)")
	AddCmd.Flags().StringSliceVar(&addTags, "tag", nil, "tag, repeatable")
	AddCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD)")
	AddCmd.Flags().StringVar(&addStart, "start", "", "event start (YYYY-MM-DD HH:MM)")
	AddCmd.Flags().StringVar(&addEnd, "end", "", "event end (YYYY-MM-DD HH:MM)")
	AddCmd.Flags().StringVar(&addURL, "url", "", "link to save")
	AddCmd.Flags().StringSliceVar(&addSubItems, "sub", nil, "checklist entry, repeatable")
}
