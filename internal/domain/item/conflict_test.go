package item

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(hour, min int) *time.Time {
	t := time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC)
	return &t
}

func event(id string, start, end *time.Time) Item {
	return Item{
		ID:        id,
		UserID:    "u1",
		Type:      KindEvent,
		Status:    StatusPending,
		StartTime: start,
		EndTime:   end,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func flagsByID(items []Item) map[string]bool {
	out := map[string]bool{}
	for _, it := range items {
		out[it.ID] = it.HasConflict
	}
	return out
}

func TestPairwiseDetector_Overlap(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Item
		overlap bool
	}{
		{
			name:    "partial overlap",
			a:       event("a", ts(9, 0), ts(10, 0)),
			b:       event("b", ts(9, 30), ts(10, 30)),
			overlap: true,
		},
		{
			name:    "full containment",
			a:       event("a", ts(9, 0), ts(12, 0)),
			b:       event("b", ts(10, 0), ts(11, 0)),
			overlap: true,
		},
		{
			name:    "identical interval",
			a:       event("a", ts(9, 0), ts(10, 0)),
			b:       event("b", ts(9, 0), ts(10, 0)),
			overlap: true,
		},
		{
			name:    "touching boundary is not a conflict",
			a:       event("a", ts(9, 0), ts(10, 0)),
			b:       event("b", ts(10, 0), ts(11, 0)),
			overlap: false,
		},
		{
			name:    "disjoint",
			a:       event("a", ts(9, 0), ts(10, 0)),
			b:       event("b", ts(14, 0), ts(15, 0)),
			overlap: false,
		},
	}

	det := NewPairwiseDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []Item{tt.a, tt.b}
			det.Recompute(items)
			// the predicate is symmetric: both or neither
			assert.Equal(t, tt.overlap, items[0].HasConflict)
			assert.Equal(t, tt.overlap, items[1].HasConflict)
		})
	}
}

func TestPairwiseDetector_DeleteClearsFlag(t *testing.T) {
	det := NewPairwiseDetector()

	a := event("a", ts(9, 0), ts(10, 0))
	b := event("b", ts(9, 30), ts(10, 30))
	items := []Item{a, b}

	changed := det.Recompute(items)
	require.Len(t, changed, 2)
	assert.True(t, items[0].HasConflict)
	assert.True(t, items[1].HasConflict)

	// soft-delete a: b's flag must drop on the next pass
	now := time.Now()
	items[0].DeletedAt = &now
	changed = det.Recompute(items)
	require.Len(t, changed, 1)
	assert.Equal(t, "b", changed[0].ID)
	assert.False(t, changed[0].HasConflict)
}

func TestPairwiseDetector_Idempotent(t *testing.T) {
	det := NewPairwiseDetector()
	items := []Item{
		event("a", ts(9, 0), ts(10, 0)),
		event("b", ts(9, 30), ts(10, 30)),
		event("c", ts(10, 30), ts(11, 0)),
	}

	first := det.Recompute(items)
	assert.NotEmpty(t, first)

	second := det.Recompute(items)
	assert.Empty(t, second, "unchanged event set must not produce further changes")
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": false}, flagsByID(items))
}

func TestPairwiseDetector_SkipsUnscheduled(t *testing.T) {
	det := NewPairwiseDetector()
	task := Item{ID: "t", Type: KindTask, Status: StatusPending}
	halfOpen := event("h", ts(9, 0), nil)
	items := []Item{task, halfOpen, event("a", ts(9, 0), ts(10, 0))}

	changed := det.Recompute(items)
	assert.Empty(t, changed)
	for _, it := range items {
		assert.False(t, it.HasConflict)
	}
}

func TestPairwiseDetector_ArchivedStillConflicts(t *testing.T) {
	// archiving does not exclude an event from detection, only deletion does
	det := NewPairwiseDetector()
	a := event("a", ts(9, 0), ts(10, 0))
	archivedAt := time.Now()
	a.ArchivedAt = &archivedAt
	items := []Item{a, event("b", ts(9, 30), ts(10, 30))}

	det.Recompute(items)
	assert.True(t, items[0].HasConflict)
	assert.True(t, items[1].HasConflict)
}
