package items

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var SearchCmd = &cobra.Command{
	Use:   "search <term>...",
	Short: "Full-text search over titles, text and tags",
	Long:  `Finds items containing every given term, case-insensitive.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}
		found, err := app.Backend.SearchItems(cmd.Context(), args)
		if err != nil {
			return err
		}
		return printItemsTable(found)
	},
}

var UpcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Open items due within the next three days",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}
		found, err := app.Backend.UpcomingItems(cmd.Context())
		if err != nil {
			return err
		}
		return printItemsTable(found)
	},
}

var TodoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Open tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}
		found, err := app.Backend.TodoItems(cmd.Context())
		if err != nil {
			return err
		}
		return printItemsTable(found)
	},
}

var InboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Unprocessed captures: notes, data and links",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}
		found, err := app.Backend.InboxItems(cmd.Context())
		if err != nil {
			return err
		}
		return printItemsTable(found)
	},
}

var TagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Tag usage, most used first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}
		stats, err := app.Backend.TagStats(cmd.Context())
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Println("No tags yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TAG\tCOUNT\tLAST USED")
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%s\n", s.Tag, s.Count, s.LastUsed.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var (
	rangeStart string
	rangeEnd   string
)

var CalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Events in a date range",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}
		start, end, err := parseRange()
		if err != nil {
			return err
		}
		found, err := app.Backend.CalendarItems(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		return printItemsTable(found)
	},
}

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Items created in a date range",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}
		start, end, err := parseRange()
		if err != nil {
			return err
		}
		found, err := app.Backend.HistoryByDateRange(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		return printItemsTable(found)
	},
}

func parseRange() (time.Time, time.Time, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if rangeStart != "" {
		var err error
		if start, err = parseWhen(rangeStart); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	end := start.AddDate(0, 0, 7)
	if rangeEnd != "" {
		var err error
		if end, err = parseWhen(rangeEnd); err != nil {
			return time.Time{}, time.Time{}, err
		}
		// An end date names a day; include the whole of it.
		end = end.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("range end must be after start")
	}
	return start, end, nil
}

func init() {
	for _, c := range []*cobra.Command{CalendarCmd, HistoryCmd} {
		c.Flags().StringVar(&rangeStart, "start", "", "range start (YYYY-MM-DD), default today")
		c.Flags().StringVar(&rangeEnd, "end", "", "range end (YYYY-MM-DD), default start+7d")
	}
}
