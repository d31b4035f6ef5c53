package items

import (
	"github.com/spf13/cobra"

	"cogniflow/internal/domain/item"
)

var (
	listType     string
	listStatus   string
	listTag      string
	listArchived bool
	listFormat   string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items",
	Long: `List items, newest first. Archived and deleted items are hidden
unless asked for with --archived.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		filter := item.Filter{
			Type:   item.Kind(listType),
			Status: listStatus,
			Tag:    listTag,
		}
		if listArchived {
			archived := true
			filter.Archived = &archived
		}

		found, err := app.Backend.Items(cmd.Context(), filter)
		if err != nil {
			return err
		}

		if listFormat == "json" {
			return printItemsJSON(found)
		}
		return printItemsTable(found)
	},
}

func init() {
	ListCmd.Flags().StringVarP(&listType, "type", "t", "", "filter by kind")
	ListCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status")
	ListCmd.Flags().StringVar(&listTag, "tag", "", "filter by tag")
	ListCmd.Flags().BoolVar(&listArchived, "archived", false, "show archived items instead")
	ListCmd.Flags().StringVar(&listFormat, "format", "table", "output format (table, json)")
}
