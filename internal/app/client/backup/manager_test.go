package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"cogniflow/internal/app/client/vault"
	"cogniflow/internal/domain/item"
	"cogniflow/internal/infrastructure/storage/objectstore"
)

func newTestManager(t *testing.T, cfg Config) (*Manager, *objectstore.Store) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store, err := objectstore.Open(filepath.Join(t.TempDir(), "store.db"), vault.Schemas(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewManager(store, cfg, log), store
}

func addItem(t *testing.T, store *objectstore.Store, id, title string) {
	t.Helper()
	it := item.Item{ID: id, UserID: "u1", Type: item.KindNote, Title: title, CreatedAt: time.Now()}
	require.NoError(t, store.Add(context.Background(), vault.ColItems, &it))
}

func TestRetentionCapEvictsOldest(t *testing.T) {
	m, store := newTestManager(t, Config{Enabled: true, IntervalMinutes: 60, MaxBackups: 3})
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		addItem(t, store, string(rune('a'+i)), "note")
		snap, err := m.TakeSnapshot(ctx)
		require.NoError(t, err)
		ids = append(ids, snap.ID)
	}

	snaps := m.Snapshots()
	require.Len(t, snaps, 3)
	// newest first, the first snapshot is gone
	assert.Equal(t, ids[3], snaps[0].ID)
	assert.Equal(t, ids[1], snaps[2].ID)
	_, err := m.byID(ids[0])
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreRoundTrip(t *testing.T) {
	m, store := newTestManager(t, Config{Enabled: true, IntervalMinutes: 60, MaxBackups: 5})
	ctx := context.Background()

	addItem(t, store, "keep", "before snapshot")
	snap, err := m.TakeSnapshot(ctx)
	require.NoError(t, err)

	addItem(t, store, "late", "after snapshot")
	n, err := store.Count(ctx, vault.ColItems)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, m.Restore(ctx, snap.ID))

	n, err = store.Count(ctx, vault.ColItems)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = store.GetByID(ctx, vault.ColItems, "keep")
	assert.NoError(t, err)
	_, err = store.GetByID(ctx, vault.ColItems, "late")
	assert.ErrorIs(t, err, objectstore.ErrNoRecord)
}

func TestRestoreMalformedLeavesStoreUntouched(t *testing.T) {
	m, store := newTestManager(t, Config{Enabled: true, IntervalMinutes: 60, MaxBackups: 5})
	ctx := context.Background()

	addItem(t, store, "a", "survivor")

	for _, payload := range [][]byte{
		[]byte("not json"),
		[]byte(`[1, 2, 3]`),
		[]byte(`{"items": "not an array"}`),
	} {
		err := m.RestoreFromData(ctx, payload)
		assert.ErrorIs(t, err, ErrMalformedSnapshot)
	}

	n, err := store.Count(ctx, vault.ColItems)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExportAndRestoreFromFile(t *testing.T) {
	m, store := newTestManager(t, Config{Enabled: true, IntervalMinutes: 60, MaxBackups: 5})
	ctx := context.Background()

	addItem(t, store, "a", "note")
	snap, err := m.TakeSnapshot(ctx)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, m.ExportToFile(snap.ID, path))

	require.NoError(t, store.Clear(ctx, vault.ColItems))
	require.NoError(t, m.RestoreFromFile(ctx, path))

	n, err := store.Count(ctx, vault.ColItems)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAutoDownloadWritesFile(t *testing.T) {
	dir := t.TempDir()
	m, store := newTestManager(t, Config{
		Enabled: true, IntervalMinutes: 60, MaxBackups: 5,
		AutoDownload: true, DownloadDir: dir,
	})
	addItem(t, store, "a", "note")

	_, err := m.TakeSnapshot(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "backup-")
}

func TestStartTakesImmediateSnapshot(t *testing.T) {
	m, store := newTestManager(t, Config{Enabled: true, IntervalMinutes: 60, MaxBackups: 5})
	addItem(t, store, "a", "note")

	ctx := context.Background()
	m.Start(ctx)
	defer m.Stop()

	require.Eventually(t, func() bool {
		return len(m.Snapshots()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDisabledManagerDoesNotStart(t *testing.T) {
	m, _ := newTestManager(t, Config{Enabled: false, IntervalMinutes: 60, MaxBackups: 5})
	m.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, m.Snapshots())
	m.Stop()
}
