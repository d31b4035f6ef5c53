// Package templates manages the quick-capture templates that pre-fill new
// checklist items when their trigger word matches.
package templates

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogniflow/cmd/client/cmd/types"
	"cogniflow/internal/app/client"
	"cogniflow/internal/domain/item"
	"cogniflow/internal/domain/template"
)

func subItem(n int, text string) item.SubItem {
	return item.SubItem{ID: fmt.Sprintf("%d", n), Text: text, Status: item.SubItemPending}
}

var TemplatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"template"},
	Short:   "Manage quick-capture templates",
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, _ := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if app == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return app, nil
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates in display order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		all, err := app.Backend.Templates(cmd.Context())
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Println("No templates.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TRIGGER\tNAME\tTYPE\tTAGS\tUSED\tID")
		for _, t := range all {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%d\t%s\n",
				t.TriggerWord, t.Icon, t.TemplateName, t.CollectionType,
				strings.Join(t.DefaultTags, ","), t.UsageCount, t.ID)
		}
		return w.Flush()
	},
}

var (
	createName    string
	createIcon    string
	createColType string
	createTags    []string
	createSubs    []string
	createOrder   int
)

var CreateCmd = &cobra.Command{
	Use:   "create <trigger-word>",
	Short: "Create a template",
	Long: `Create a template keyed on a trigger word. Trigger words are
matched case-insensitively and must be unique per account.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		draft := template.Draft{
			TriggerWord:    args[0],
			TemplateName:   createName,
			Icon:           createIcon,
			CollectionType: createColType,
			DefaultTags:    createTags,
			SortOrder:      createOrder,
		}
		if draft.TemplateName == "" {
			draft.TemplateName = args[0]
		}
		for i, text := range createSubs {
			draft.DefaultSubItems = append(draft.DefaultSubItems, subItem(i+1, text))
		}

		created, err := app.Backend.CreateTemplate(cmd.Context(), draft)
		if err != nil {
			if errors.Is(err, template.ErrDuplicateTrigger) {
				return fmt.Errorf("trigger word %q is already taken", args[0])
			}
			return err
		}

		color.Green("Template %q created (%s)", created.TriggerWord, created.ID)
		return nil
	},
}

var (
	updateTrigger string
	updateName    string
	updateIcon    string
	updateTags    []string
)

var UpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		draft := template.Draft{
			TriggerWord:  updateTrigger,
			TemplateName: updateName,
			Icon:         updateIcon,
			DefaultTags:  updateTags,
		}

		updated, err := app.Backend.UpdateTemplate(cmd.Context(), args[0], draft)
		if err != nil {
			switch {
			case errors.Is(err, template.ErrNotFound):
				return fmt.Errorf("no template %s", args[0])
			case errors.Is(err, template.ErrDuplicateTrigger):
				return fmt.Errorf("trigger word %q is already taken", updateTrigger)
			}
			return err
		}

		color.Green("Template %q updated", updated.TriggerWord)
		return nil
	},
}

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.Backend.DeleteTemplate(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, template.ErrNotFound) {
				return fmt.Errorf("no template %s", args[0])
			}
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&createName, "name", "n", "", "display name")
	CreateCmd.Flags().StringVar(&createIcon, "icon", "", "display icon")
	CreateCmd.Flags().StringVar(&createColType, "collection-type", "", "collection type for created items")
	CreateCmd.Flags().StringSliceVar(&createTags, "tag", nil, "default tag, repeatable")
	CreateCmd.Flags().StringSliceVar(&createSubs, "sub", nil, "default checklist entry, repeatable")
	CreateCmd.Flags().IntVar(&createOrder, "order", 0, "sort position")

	UpdateCmd.Flags().StringVar(&updateTrigger, "trigger", "", "new trigger word")
	UpdateCmd.Flags().StringVarP(&updateName, "name", "n", "", "new display name")
	UpdateCmd.Flags().StringVar(&updateIcon, "icon", "", "new icon")
	UpdateCmd.Flags().StringSliceVar(&updateTags, "tag", nil, "replace default tags, repeatable")
}
