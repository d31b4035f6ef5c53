package item

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC)
}

func dayp(d int) *time.Time {
	t := day(d)
	return &t
}

func TestFilterMatches_DeletionBeatsArchiveAxis(t *testing.T) {
	now := day(1)
	gone := Item{ID: "g", DeletedAt: &now, ArchivedAt: &now}

	archived := true
	assert.False(t, Filter{}.Matches(&gone))
	assert.False(t, Filter{Archived: &archived}.Matches(&gone))
	assert.True(t, Filter{IncludeDeleted: true, Archived: &archived}.Matches(&gone))
}

func TestFilterSelect_NewestFirst(t *testing.T) {
	items := []Item{
		{ID: "old", CreatedAt: day(1)},
		{ID: "new", CreatedAt: day(5)},
		{ID: "mid", CreatedAt: day(3)},
	}

	got := Filter{}.Select(items)

	require.Len(t, got, 3)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Equal(t, "old", got[2].ID)
}

func TestUpcoming_WindowAndOrder(t *testing.T) {
	now := day(10)
	items := []Item{
		{ID: "past", Type: KindTask, Status: StatusPending, DueDate: dayp(9)},
		{ID: "soon", Type: KindTask, Status: StatusPending, DueDate: dayp(11)},
		{ID: "later", Type: KindTask, Status: StatusPending, DueDate: dayp(12)},
		{ID: "beyond", Type: KindTask, Status: StatusPending, DueDate: dayp(20)},
		{ID: "done", Type: KindTask, Status: StatusCompleted, DueDate: dayp(11)},
		{ID: "undated", Type: KindTask, Status: StatusPending},
	}

	got := Upcoming(items, now)

	require.Len(t, got, 2)
	assert.Equal(t, "soon", got[0].ID)
	assert.Equal(t, "later", got[1].ID)
}

func TestTodo_OpenTasksAndEventsOnly(t *testing.T) {
	archivedAt := day(1)
	items := []Item{
		{ID: "t1", Type: KindTask, Status: StatusPending},
		{ID: "e1", Type: KindEvent, Status: StatusInProgress},
		{ID: "n1", Type: KindNote, Status: StatusPending},
		{ID: "t2", Type: KindTask, Status: StatusCancelled},
		{ID: "t3", Type: KindTask, Status: StatusPending, ArchivedAt: &archivedAt},
	}

	got := Todo(items)

	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "e1", got[1].ID)
}

func TestSearch_ExcludesArchivedAndDeleted(t *testing.T) {
	archivedAt := day(2)
	deletedAt := day(3)
	items := []Item{
		{ID: "live", Type: KindTask, Title: "quarterly report"},
		{ID: "shelved", Type: KindTask, Title: "quarterly report", ArchivedAt: &archivedAt},
		{ID: "gone", Type: KindTask, Title: "quarterly report", DeletedAt: &deletedAt},
	}

	got := Search(items, []string{"quarterly"})

	require.Len(t, got, 1)
	assert.Equal(t, "live", got[0].ID)
}

func TestCalendar_ExcludesArchivedAndDeleted(t *testing.T) {
	archivedAt := day(2)
	deletedAt := day(3)
	items := []Item{
		{ID: "live", Type: KindTask, DueDate: dayp(10)},
		{ID: "shelved", Type: KindTask, DueDate: dayp(10), ArchivedAt: &archivedAt},
		{ID: "gone", Type: KindEvent, StartTime: dayp(10), EndTime: dayp(11), DeletedAt: &deletedAt},
	}

	got := Calendar(items, day(9), day(12))

	require.Len(t, got, 1)
	assert.Equal(t, "live", got[0].ID)
}

func TestSearch_MatchesTagsAndIsCaseInsensitive(t *testing.T) {
	items := []Item{
		{ID: "a", Title: "Quarterly Report"},
		{ID: "b", Title: "groceries", Tags: []string{"Errands"}},
		{ID: "c", Description: "report on errand batching"},
	}

	got := Search(items, []string{"ERRAND"})

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestQueryMatches_KeywordsAreAnyOf(t *testing.T) {
	it := Item{Title: "plan sprint review", CreatedAt: day(5)}

	assert.True(t, Query{Keywords: []string{"retro", "review"}}.MatchesQuery(&it))
	assert.False(t, Query{Keywords: []string{"retro", "budget"}}.MatchesQuery(&it))
	assert.False(t, Query{Keywords: []string{"review"}, Start: dayp(6)}.MatchesQuery(&it))
}
