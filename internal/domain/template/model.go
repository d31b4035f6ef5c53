package template

import (
	"time"

	"cogniflow/internal/domain/item"
)

// Template pre-fills new collection items when its trigger word matches.
type Template struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	TriggerWord     string         `json:"trigger_word"`
	TemplateName    string         `json:"template_name"`
	Icon            string         `json:"icon"`
	CollectionType  string         `json:"collection_type"`
	DefaultTags     []string       `json:"default_tags"`
	DefaultSubItems []item.SubItem `json:"default_sub_items"`
	Color           string         `json:"color,omitempty"`
	IsActive        bool           `json:"is_active"`
	SortOrder       int            `json:"sort_order"`
	UsageCount      int            `json:"usage_count"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Draft carries caller-supplied template fields.
type Draft struct {
	TriggerWord     string         `json:"trigger_word"`
	TemplateName    string         `json:"template_name"`
	Icon            string         `json:"icon"`
	CollectionType  string         `json:"collection_type"`
	DefaultTags     []string       `json:"default_tags,omitempty"`
	DefaultSubItems []item.SubItem `json:"default_sub_items,omitempty"`
	Color           string         `json:"color,omitempty"`
	SortOrder       int            `json:"sort_order,omitempty"`
}

// Defaults returns the template set seeded for every new account.
func Defaults() []Draft {
	return []Draft{
		{
			TriggerWord:    "daily",
			TemplateName:   "Daily work log",
			Icon:           "📰",
			CollectionType: "daily",
			DefaultTags:    []string{"work", "daily"},
			DefaultSubItems: []item.SubItem{
				{ID: "1", Text: "Summarize today's work", Status: item.SubItemPending},
				{ID: "2", Text: "Note problems encountered", Status: item.SubItemPending},
				{ID: "3", Text: "Plan tomorrow", Status: item.SubItemPending},
			},
			SortOrder: 0,
		},
		{
			TriggerWord:    "meeting",
			TemplateName:   "Meeting minutes",
			Icon:           "👥",
			CollectionType: "meeting",
			DefaultTags:    []string{"meeting", "work"},
			DefaultSubItems: []item.SubItem{
				{ID: "1", Text: "Record the agenda", Status: item.SubItemPending},
				{ID: "2", Text: "Record key discussion points", Status: item.SubItemPending},
				{ID: "3", Text: "Record action items", Status: item.SubItemPending},
			},
			SortOrder: 1,
		},
		{
			TriggerWord:    "monthly",
			TemplateName:   "Monthly review",
			Icon:           "📅",
			CollectionType: "monthly",
			DefaultTags:    []string{"work", "monthly"},
			DefaultSubItems: []item.SubItem{
				{ID: "1", Text: "What got done this month", Status: item.SubItemPending},
				{ID: "2", Text: "Highlights and results", Status: item.SubItemPending},
				{ID: "3", Text: "Plan for next month", Status: item.SubItemPending},
			},
			SortOrder: 2,
		},
	}
}
