package item

import (
	"context"
	"time"
)

// Repository is the server-side item store.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	// List returns the user's items narrowed by the filter, newest first.
	List(ctx context.Context, userID string, f Filter) ([]Item, error)
	// ListAll returns every record of the user, archived and soft-deleted
	// included. Derived views and conflict recomputation start from here.
	ListAll(ctx context.Context, userID string) ([]Item, error)
	// Get returns one non-deleted item owned by the user, ErrNotFound
	// otherwise.
	Get(ctx context.Context, userID, id string) (*Item, error)
	Update(ctx context.Context, it *Item) error
	// ListScheduledEvents returns the user's non-deleted events that have
	// both start and end times set.
	ListScheduledEvents(ctx context.Context, userID string) ([]Item, error)
	// SetConflictFlags persists recomputed flags in one transaction.
	SetConflictFlags(ctx context.Context, flags map[string]bool) error
}

// Activity is one audit entry recorded alongside a mutation.
type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	ItemID    string    `json:"item_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityRecorder appends audit entries. Recording is best effort and must
// never fail the mutation it describes.
type ActivityRecorder interface {
	Record(ctx context.Context, a *Activity) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Activity, error)
	DeleteByUser(ctx context.Context, userID string) error
}
