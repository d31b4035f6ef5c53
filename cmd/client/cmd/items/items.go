// Package items groups the capture and retrieval commands.
package items

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/cmd/client/cmd/types"
	"cogniflow/internal/app/client"
	"cogniflow/internal/domain/item"
)

var ItemsCmd = &cobra.Command{
	Use:     "items",
	Aliases: []string{"item"},
	Short:   "Capture and browse notes, tasks and events",
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if app == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return app, nil
}

func printItemsJSON(items []item.Item) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func printItemsTable(items []item.Item) error {
	if len(items) == 0 {
		fmt.Println("No items.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tTITLE\tWHEN\tTAGS")
	for i := range items {
		it := &items[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(it.ID), it.Type, statusLabel(it), truncate(it.Title, 40),
			when(it), tagList(it.Tags))
	}
	return w.Flush()
}

func printItem(it *item.Item) {
	fmt.Printf("ID:       %s\n", it.ID)
	fmt.Printf("Type:     %s\n", it.Type)
	fmt.Printf("Title:    %s\n", it.Title)
	if it.Description != "" {
		fmt.Printf("Details:  %s\n", it.Description)
	}
	fmt.Printf("Status:   %s\n", it.Status)
	fmt.Printf("Priority: %s\n", it.Priority)
	if it.DueDate != nil {
		fmt.Printf("Due:      %s\n", it.DueDate.Format("2006-01-02 15:04"))
	}
	if it.StartTime != nil && it.EndTime != nil {
		fmt.Printf("Schedule: %s - %s\n",
			it.StartTime.Format("2006-01-02 15:04"), it.EndTime.Format("15:04"))
	}
	if it.HasConflict {
		color.Yellow("Conflict: overlaps another scheduled event")
	}
	if len(it.Tags) > 0 {
		fmt.Printf("Tags:     %s\n", tagList(it.Tags))
	}
	if it.URL != "" {
		fmt.Printf("URL:      %s\n", it.URL)
	}
	for _, sub := range it.SubItems {
		mark := " "
		if sub.Status == item.SubItemDone {
			mark = "x"
		}
		fmt.Printf("  [%s] %s\n", mark, sub.Text)
	}
	if it.IsArchived() {
		fmt.Printf("Archived: %s\n", it.ArchivedAt.Format("2006-01-02"))
	}
	fmt.Printf("Created:  %s\n", it.CreatedAt.Format("2006-01-02 15:04"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func statusLabel(it *item.Item) string {
	if it.HasConflict {
		return it.Status + "!"
	}
	return it.Status
}

func when(it *item.Item) string {
	switch {
	case it.StartTime != nil:
		return it.StartTime.Format("Jan 02 15:04")
	case it.DueDate != nil:
		return it.DueDate.Format("Jan 02")
	}
	return ""
}

func tagList(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ", "
		}
		out += t
	}
	return out
}

// parseWhen accepts a date or a date with time, local zone.
func parseWhen(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q, want YYYY-MM-DD or YYYY-MM-DD HH:MM", s)
}
