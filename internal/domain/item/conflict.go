package item

// ConflictDetector recomputes the derived has_conflict flag over one user's
// scheduled events. Implementations must be deterministic and idempotent so
// the flag can be rebuilt from scratch after any mutation.
type ConflictDetector interface {
	// Recompute takes every non-deleted item of one user, resets the flag,
	// re-derives it, and returns the items whose flag changed. The caller is
	// responsible for persisting the returned items in one batch.
	Recompute(items []Item) []Item
}

// PairwiseDetector is the O(n²) scan over all unordered event pairs. Fine
// for per-user event counts in the hundreds; swap in a sweep-line behind the
// same interface if that ever stops being true.
type PairwiseDetector struct{}

func NewPairwiseDetector() *PairwiseDetector { return &PairwiseDetector{} }

func (PairwiseDetector) Recompute(items []Item) []Item {
	events := make([]*Item, 0, len(items))
	for i := range items {
		if !items[i].IsDeleted() && items[i].IsScheduledEvent() {
			events = append(events, &items[i])
		}
	}

	conflicted := make(map[string]bool, len(events))
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if events[i].Overlaps(events[j]) {
				conflicted[events[i].ID] = true
				conflicted[events[j].ID] = true
			}
		}
	}

	changed := make([]Item, 0)
	for _, ev := range events {
		want := conflicted[ev.ID]
		if ev.HasConflict != want {
			ev.HasConflict = want
			changed = append(changed, *ev)
		}
	}
	return changed
}
