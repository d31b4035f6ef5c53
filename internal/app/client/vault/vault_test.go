package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"cogniflow/internal/domain/item"
	"cogniflow/internal/domain/template"
	"cogniflow/internal/infrastructure/storage/objectstore"
)

type fakeAuth struct{ id string }

func (f *fakeAuth) CurrentUserID() string { return f.id }

func newTestVault(t *testing.T) (*Vault, *fakeAuth) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store, err := objectstore.Open(filepath.Join(t.TempDir(), "vault.db"), Schemas(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	auth := &fakeAuth{id: "u1"}
	return New(store, auth, item.NewPairwiseDetector(), log), auth
}

func strp(s string) *string { return &s }

func timep(t time.Time) *time.Time { return &t }

func TestVaultUnauthenticated(t *testing.T) {
	v, auth := newTestVault(t)
	auth.id = ""
	ctx := context.Background()

	_, err := v.CreateItem(ctx, item.Draft{Title: "x", Type: item.KindNote})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = v.Items(ctx, item.Filter{})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = v.Settings(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestVaultUserIsolation(t *testing.T) {
	v, auth := newTestVault(t)
	ctx := context.Background()

	mine, err := v.CreateItem(ctx, item.Draft{Title: "mine", Type: item.KindNote})
	require.NoError(t, err)

	auth.id = "u2"
	_, err = v.CreateItem(ctx, item.Draft{Title: "theirs", Type: item.KindNote})
	require.NoError(t, err)

	items, err := v.Items(ctx, item.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "theirs", items[0].Title)

	// u2 cannot read u1's item even by id
	_, err = v.ItemByID(ctx, mine.ID)
	assert.ErrorIs(t, err, item.ErrNotFound)
}

func TestVaultLazyProvisioningIdempotent(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	s1, err := v.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "system", s1["theme"])

	_, err = v.UpdateSettings(ctx, map[string]any{"theme": "dark"})
	require.NoError(t, err)

	// a second read must not reset the stored settings
	s2, err := v.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", s2["theme"])

	p, err := v.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
}

func TestVaultSoftDeleteAndArchive(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	keep, err := v.CreateItem(ctx, item.Draft{Title: "keep", Type: item.KindTask})
	require.NoError(t, err)
	gone, err := v.CreateItem(ctx, item.Draft{Title: "gone", Type: item.KindTask})
	require.NoError(t, err)
	shelved, err := v.CreateItem(ctx, item.Draft{Title: "shelved", Type: item.KindTask})
	require.NoError(t, err)

	require.NoError(t, v.DeleteItem(ctx, gone.ID))
	require.NoError(t, v.ArchiveItem(ctx, shelved.ID))

	items, err := v.Items(ctx, item.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ID)

	// deleted items are invisible by id too, and cannot be deleted twice
	_, err = v.ItemByID(ctx, gone.ID)
	assert.ErrorIs(t, err, item.ErrNotFound)
	assert.ErrorIs(t, v.DeleteItem(ctx, gone.ID), item.ErrNotFound)

	archived := true
	items, err = v.Items(ctx, item.Filter{Archived: &archived})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, shelved.ID, items[0].ID)

	require.NoError(t, v.UnarchiveItem(ctx, shelved.ID))
	items, err = v.Items(ctx, item.Filter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestVaultArchivedHiddenFromSearchAndCalendar(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()
	due := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	report, err := v.CreateItem(ctx, item.Draft{
		Title: "quarterly report", Type: item.KindTask, DueDate: timep(due),
	})
	require.NoError(t, err)

	found, err := v.SearchItems(ctx, []string{"quarterly"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	cal, err := v.CalendarItems(ctx, due.AddDate(0, 0, -1), due.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, cal, 1)

	require.NoError(t, v.ArchiveItem(ctx, report.ID))

	found, err = v.SearchItems(ctx, []string{"quarterly"})
	require.NoError(t, err)
	assert.Empty(t, found)

	cal, err = v.CalendarItems(ctx, due.AddDate(0, 0, -1), due.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, cal)
}

func TestVaultUpdateItem(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	it, err := v.CreateItem(ctx, item.Draft{Title: "task", Type: item.KindTask})
	require.NoError(t, err)
	assert.Equal(t, item.StatusPending, it.Status)
	assert.Equal(t, "medium", it.Priority)

	got, err := v.UpdateItem(ctx, it.ID, item.Update{Status: strp(item.StatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, item.StatusCompleted, got.Status)
	assert.Equal(t, "task", got.Title)
}

func TestVaultConflictLifecycle(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	a, err := v.CreateItem(ctx, item.Draft{
		Title: "standup", Type: item.KindEvent,
		StartTime: timep(day.Add(9 * time.Hour)),
		EndTime:   timep(day.Add(10 * time.Hour)),
	})
	require.NoError(t, err)
	assert.False(t, a.HasConflict)

	b, err := v.CreateItem(ctx, item.Draft{
		Title: "review", Type: item.KindEvent,
		StartTime: timep(day.Add(9*time.Hour + 30*time.Minute)),
		EndTime:   timep(day.Add(10*time.Hour + 30*time.Minute)),
	})
	require.NoError(t, err)
	assert.True(t, b.HasConflict)

	a, err = v.ItemByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, a.HasConflict)

	// moving B away clears both flags
	_, err = v.UpdateItem(ctx, b.ID, item.Update{
		StartTime: timep(day.Add(14 * time.Hour)),
		EndTime:   timep(day.Add(15 * time.Hour)),
	})
	require.NoError(t, err)

	a, err = v.ItemByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, a.HasConflict)

	// back-to-back events never conflict
	c, err := v.CreateItem(ctx, item.Draft{
		Title: "lunch", Type: item.KindEvent,
		StartTime: timep(day.Add(10 * time.Hour)),
		EndTime:   timep(day.Add(11 * time.Hour)),
	})
	require.NoError(t, err)
	assert.False(t, c.HasConflict)
}

func TestVaultConflictClearedByDelete(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	a, err := v.CreateItem(ctx, item.Draft{
		Title: "a", Type: item.KindEvent,
		StartTime: timep(day.Add(9 * time.Hour)),
		EndTime:   timep(day.Add(10 * time.Hour)),
	})
	require.NoError(t, err)
	b, err := v.CreateItem(ctx, item.Draft{
		Title: "b", Type: item.KindEvent,
		StartTime: timep(day.Add(9 * time.Hour)),
		EndTime:   timep(day.Add(10 * time.Hour)),
	})
	require.NoError(t, err)
	assert.True(t, b.HasConflict)

	require.NoError(t, v.DeleteItem(ctx, b.ID))

	a, err = v.ItemByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, a.HasConflict)
}

func TestVaultTagStats(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	for _, tags := range [][]string{{"work", "go"}, {"work"}, {"home"}} {
		_, err := v.CreateItem(ctx, item.Draft{Title: "t", Type: item.KindNote, Tags: tags})
		require.NoError(t, err)
	}

	stats, err := v.TagStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, "work", stats[0].Tag)
	assert.Equal(t, 2, stats[0].Count)
}

func TestVaultUserDataRoundTrip(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	_, err := v.CreateItem(ctx, item.Draft{Title: "a", Type: item.KindNote})
	require.NoError(t, err)
	deleted, err := v.CreateItem(ctx, item.Draft{Title: "b", Type: item.KindNote})
	require.NoError(t, err)
	require.NoError(t, v.DeleteItem(ctx, deleted.ID))

	data, err := v.UserData(ctx)
	require.NoError(t, err)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "u1", data.Profile.ID)

	data.Items[0].Title = "renamed"
	require.NoError(t, v.SaveUserData(ctx, data))

	items, err := v.Items(ctx, item.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "renamed", items[0].Title)
}

func TestVaultDeleteAccountCascade(t *testing.T) {
	v, auth := newTestVault(t)
	ctx := context.Background()

	_, err := v.CreateItem(ctx, item.Draft{Title: "x", Type: item.KindNote})
	require.NoError(t, err)
	require.NoError(t, v.ProvisionDefaultTemplates(ctx))

	auth.id = "u2"
	other, err := v.CreateItem(ctx, item.Draft{Title: "other", Type: item.KindNote})
	require.NoError(t, err)

	auth.id = "u1"
	require.NoError(t, v.DeleteAccount(ctx))

	items, err := v.Items(ctx, item.Filter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, items)
	tpls, err := v.Templates(ctx)
	require.NoError(t, err)
	assert.Empty(t, tpls)

	auth.id = "u2"
	got, err := v.ItemByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "other", got.Title)
}

func TestVaultTemplates(t *testing.T) {
	v, _ := newTestVault(t)
	ctx := context.Background()

	require.NoError(t, v.ProvisionDefaultTemplates(ctx))
	// re-provisioning keeps the existing set
	require.NoError(t, v.ProvisionDefaultTemplates(ctx))

	tpls, err := v.Templates(ctx)
	require.NoError(t, err)
	require.Len(t, tpls, 3)
	assert.Equal(t, "daily", tpls[0].TriggerWord)

	got, err := v.TemplateByTrigger(ctx, "MEETING")
	require.NoError(t, err)
	assert.Equal(t, "Meeting minutes", got.TemplateName)

	_, err = v.CreateTemplate(ctx, template.Draft{TriggerWord: "daily", TemplateName: "dup"})
	assert.ErrorIs(t, err, template.ErrDuplicateTrigger)

	require.NoError(t, v.DeleteTemplate(ctx, got.ID))
	_, err = v.TemplateByTrigger(ctx, "meeting")
	assert.ErrorIs(t, err, template.ErrNotFound)
}
