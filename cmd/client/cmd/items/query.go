package items

import (
	"github.com/spf13/cobra"

	"cogniflow/internal/domain/item"
)

var (
	queryText     string
	queryTypes    []string
	queryStatuses []string
	queryTags     []string
	queryKeywords []string
	queryStart    string
	queryEnd      string
)

var QueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Structured search",
	Long: `Combines type, status, tag, keyword and creation-date criteria.
All given criteria must hold; keywords match any-of.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		q := item.Query{
			SearchText: queryText,
			Statuses:   queryStatuses,
			Tags:       queryTags,
			Keywords:   queryKeywords,
		}
		for _, t := range queryTypes {
			q.Types = append(q.Types, item.Kind(t))
		}
		if queryStart != "" {
			start, err := parseWhen(queryStart)
			if err != nil {
				return err
			}
			q.Start = &start
		}
		if queryEnd != "" {
			end, err := parseWhen(queryEnd)
			if err != nil {
				return err
			}
			q.End = &end
		}

		found, err := app.Backend.QueryItems(cmd.Context(), q)
		if err != nil {
			return err
		}
		return printItemsTable(found)
	},
}

func init() {
	QueryCmd.Flags().StringVar(&queryText, "text", "", "free text over title, description and raw text")
	QueryCmd.Flags().StringSliceVarP(&queryTypes, "type", "t", nil, "item kind, repeatable")
	QueryCmd.Flags().StringSliceVarP(&queryStatuses, "status", "s", nil, "status, repeatable")
	QueryCmd.Flags().StringSliceVar(&queryTags, "tag", nil, "tag, repeatable (any-of)")
	QueryCmd.Flags().StringSliceVar(&queryKeywords, "keyword", nil, "keyword, repeatable (any-of)")
	QueryCmd.Flags().StringVar(&queryStart, "start", "", "created on or after (YYYY-MM-DD)")
	QueryCmd.Flags().StringVar(&queryEnd, "end", "", "created on or before (YYYY-MM-DD)")
}
