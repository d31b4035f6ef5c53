package item

import "time"

// Draft carries the caller-supplied fields of a new item. The backend fills
// in id, owner and lifecycle timestamps.
type Draft struct {
	RawText     string         `json:"raw_text"`
	Type        Kind           `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	Priority    string         `json:"priority,omitempty"`
	Status      string         `json:"status,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Entities    map[string]any `json:"entities,omitempty"`

	URL          string     `json:"url,omitempty"`
	URLTitle     string     `json:"url_title,omitempty"`
	URLSummary   string     `json:"url_summary,omitempty"`
	URLThumbnail string     `json:"url_thumbnail,omitempty"`
	URLFetchedAt *time.Time `json:"url_fetched_at,omitempty"`

	StartTime         *time.Time `json:"start_time,omitempty"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	RecurrenceRule    string     `json:"recurrence_rule,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`
	MasterItemID      string     `json:"master_item_id,omitempty"`
	IsMaster          bool       `json:"is_master,omitempty"`

	CollectionType string    `json:"collection_type,omitempty"`
	SubItems       []SubItem `json:"sub_items,omitempty"`
}

// Materialize builds an Item from the draft, applying the standard defaults
// (priority medium, status pending).
func (d Draft) Materialize() Item {
	it := Item{
		RawText:           d.RawText,
		Type:              d.Type,
		Title:             d.Title,
		Description:       d.Description,
		DueDate:           d.DueDate,
		Priority:          d.Priority,
		Status:            d.Status,
		Tags:              d.Tags,
		Entities:          d.Entities,
		URL:               d.URL,
		URLTitle:          d.URLTitle,
		URLSummary:        d.URLSummary,
		URLThumbnail:      d.URLThumbnail,
		URLFetchedAt:      d.URLFetchedAt,
		StartTime:         d.StartTime,
		EndTime:           d.EndTime,
		RecurrenceRule:    d.RecurrenceRule,
		RecurrenceEndDate: d.RecurrenceEndDate,
		MasterItemID:      d.MasterItemID,
		IsMaster:          d.IsMaster,
		CollectionType:    d.CollectionType,
		SubItems:          d.SubItems,
	}
	if it.Priority == "" {
		it.Priority = "medium"
	}
	if it.Status == "" {
		it.Status = StatusPending
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	return it
}

// Update is a partial item mutation. Nil fields are left untouched.
type Update struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`

	DueDate           *time.Time `json:"due_date,omitempty"`
	StartTime         *time.Time `json:"start_time,omitempty"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	RecurrenceRule    *string    `json:"recurrence_rule,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`

	URL          *string    `json:"url,omitempty"`
	URLTitle     *string    `json:"url_title,omitempty"`
	URLSummary   *string    `json:"url_summary,omitempty"`
	URLThumbnail *string    `json:"url_thumbnail,omitempty"`
	URLFetchedAt *time.Time `json:"url_fetched_at,omitempty"`

	CollectionType *string    `json:"collection_type,omitempty"`
	SubItems       *[]SubItem `json:"sub_items,omitempty"`
}

// Apply copies the set fields onto the item. The caller stamps UpdatedAt.
func (u Update) Apply(it *Item) {
	if u.Title != nil {
		it.Title = *u.Title
	}
	if u.Description != nil {
		it.Description = *u.Description
	}
	if u.Priority != nil {
		it.Priority = *u.Priority
	}
	if u.Status != nil {
		it.Status = *u.Status
	}
	if u.Tags != nil {
		it.Tags = *u.Tags
	}
	if u.DueDate != nil {
		it.DueDate = u.DueDate
	}
	if u.StartTime != nil {
		it.StartTime = u.StartTime
	}
	if u.EndTime != nil {
		it.EndTime = u.EndTime
	}
	if u.RecurrenceRule != nil {
		it.RecurrenceRule = *u.RecurrenceRule
	}
	if u.RecurrenceEndDate != nil {
		it.RecurrenceEndDate = u.RecurrenceEndDate
	}
	if u.URL != nil {
		it.URL = *u.URL
	}
	if u.URLTitle != nil {
		it.URLTitle = *u.URLTitle
	}
	if u.URLSummary != nil {
		it.URLSummary = *u.URLSummary
	}
	if u.URLThumbnail != nil {
		it.URLThumbnail = *u.URLThumbnail
	}
	if u.URLFetchedAt != nil {
		it.URLFetchedAt = u.URLFetchedAt
	}
	if u.CollectionType != nil {
		it.CollectionType = *u.CollectionType
	}
	if u.SubItems != nil {
		it.SubItems = *u.SubItems
	}
}

// TouchesSchedule reports whether the update can change conflict status.
func (u Update) TouchesSchedule() bool {
	return u.StartTime != nil || u.EndTime != nil
}

// Filter narrows a list read. The zero value gives the default read path:
// non-archived, non-deleted items of every kind.
type Filter struct {
	Type           Kind   `json:"type,omitempty"`
	Status         string `json:"status,omitempty"`
	Tag            string `json:"tag,omitempty"`
	Archived       *bool  `json:"archived,omitempty"`
	IncludeDeleted bool   `json:"-"`
}

// Query is the structured search used by POST /items/query and the Vault's
// in-memory equivalent.
type Query struct {
	SearchText string     `json:"searchText,omitempty"`
	Types      []Kind     `json:"types,omitempty"`
	Statuses   []string   `json:"statuses,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Keywords   []string   `json:"keywords,omitempty"`
	Start      *time.Time `json:"start,omitempty"`
	End        *time.Time `json:"end,omitempty"`
}
