package item

import "time"

// Kind classifies an item. Mirrors the set accepted by the server schema.
type Kind string

const (
	KindTask       Kind = "task"
	KindEvent      Kind = "event"
	KindNote       Kind = "note"
	KindData       Kind = "data"
	KindURL        Kind = "url"
	KindCollection Kind = "collection"
)

func (k Kind) Valid() bool {
	switch k {
	case KindTask, KindEvent, KindNote, KindData, KindURL, KindCollection:
		return true
	}
	return false
}

// Item statuses. Stored as free strings on the wire; these are the ones the
// clients produce.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusBlocked    = "blocked"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

type SubItemStatus string

const (
	SubItemPending SubItemStatus = "pending"
	SubItemDone    SubItemStatus = "done"
)

// SubItem is a checklist entry inside a collection-kind item.
type SubItem struct {
	ID     string        `json:"id"`
	Text   string        `json:"text"`
	Status SubItemStatus `json:"status"`
}

// Item is the central entity of the system.
type Item struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	RawText     string         `json:"raw_text"`
	Type        Kind           `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     *time.Time     `json:"due_date"`
	Priority    string         `json:"priority"`
	Status      string         `json:"status"`
	Tags        []string       `json:"tags"`
	Entities    map[string]any `json:"entities,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at"`
	DeletedAt  *time.Time `json:"deleted_at"`

	URL          string     `json:"url,omitempty"`
	URLTitle     string     `json:"url_title,omitempty"`
	URLSummary   string     `json:"url_summary,omitempty"`
	URLThumbnail string     `json:"url_thumbnail,omitempty"`
	URLFetchedAt *time.Time `json:"url_fetched_at,omitempty"`

	HasConflict bool `json:"has_conflict"`

	StartTime         *time.Time `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	RecurrenceRule    string     `json:"recurrence_rule,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`
	MasterItemID      string     `json:"master_item_id,omitempty"`
	IsMaster          bool       `json:"is_master,omitempty"`

	CollectionType string    `json:"collection_type,omitempty"`
	SubItems       []SubItem `json:"sub_items,omitempty"`
}

func (i *Item) IsArchived() bool { return i.ArchivedAt != nil }
func (i *Item) IsDeleted() bool  { return i.DeletedAt != nil }

// IsScheduledEvent reports whether the item participates in conflict
// detection: an event with both a start and an end instant.
func (i *Item) IsScheduledEvent() bool {
	return i.Type == KindEvent && i.StartTime != nil && i.EndTime != nil
}

// Overlaps reports whether two scheduled events occupy overlapping [start,
// end) windows. Touching at a shared boundary instant is not an overlap.
// Both items must satisfy IsScheduledEvent.
func (i *Item) Overlaps(other *Item) bool {
	aStart, aEnd := *i.StartTime, *i.EndTime
	bStart, bEnd := *other.StartTime, *other.EndTime

	return (!aStart.Before(bStart) && aStart.Before(bEnd)) ||
		(aEnd.After(bStart) && !aEnd.After(bEnd)) ||
		(!aStart.After(bStart) && !aEnd.Before(bEnd)) ||
		(!bStart.After(aStart) && !bEnd.Before(aEnd))
}

func (i *Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagStat is one row of the tag usage aggregation.
type TagStat struct {
	Tag      string    `json:"tag"`
	Count    int       `json:"count"`
	LastUsed time.Time `json:"lastUsed"`
}
