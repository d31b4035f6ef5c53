// Package backup takes periodic snapshots of the embedded store and can
// restore the whole store from any of them.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"cogniflow/internal/infrastructure/storage/objectstore"
)

// ErrMalformedSnapshot is returned when a restore payload cannot be parsed.
// The store is left untouched.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// ErrNotFound is returned when a snapshot id is unknown.
var ErrNotFound = errors.New("snapshot not found")

type Config struct {
	Enabled         bool
	IntervalMinutes int
	MaxBackups      int
	AutoDownload    bool
	DownloadDir     string
}

// Snapshot is one retained point-in-time copy of the store.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Size      int       `json:"size"`

	data []byte
}

// Manager runs the snapshot timer. Snapshot failures are logged and the
// timer keeps running; only restore reports errors to the caller.
type Manager struct {
	store *objectstore.Store
	log   *slog.Logger

	mu        sync.Mutex
	cfg       Config
	snapshots []Snapshot // newest first
	stop      chan struct{}
	wg        sync.WaitGroup

	now func() time.Time
}

func NewManager(store *objectstore.Store, cfg Config, log *slog.Logger) *Manager {
	return &Manager{
		store: store,
		cfg:   cfg,
		log:   log.With(slog.String("component", "backup")),
		now:   time.Now,
	}
}

// Start takes an immediate snapshot and then one per interval. No-op when
// backups are disabled.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cfg.Enabled || m.stop != nil {
		return
	}
	m.startLocked(ctx)
}

func (m *Manager) startLocked(ctx context.Context) {
	stop := make(chan struct{})
	m.stop = stop
	interval := time.Duration(m.cfg.IntervalMinutes) * time.Minute

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		if _, err := m.TakeSnapshot(ctx); err != nil {
			m.log.Error("initial snapshot failed", "error", err)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := m.TakeSnapshot(ctx); err != nil {
					m.log.Error("scheduled snapshot failed", "error", err)
				}
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) Stop() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()
	if stop != nil {
		close(stop)
		m.wg.Wait()
	}
}

// UpdateConfig applies new settings at runtime, restarting the timer when
// the schedule changed.
func (m *Manager) UpdateConfig(ctx context.Context, cfg Config) {
	m.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	if cfg.MaxBackups > 0 && len(m.snapshots) > cfg.MaxBackups {
		m.snapshots = m.snapshots[:cfg.MaxBackups]
	}
	if cfg.Enabled {
		m.startLocked(ctx)
	}
}

// TakeSnapshot captures the current store contents and retains it, evicting
// the oldest snapshot past the retention cap.
func (m *Manager) TakeSnapshot(ctx context.Context) (*Snapshot, error) {
	data, err := m.store.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("export store: %w", err)
	}

	snap := Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: m.now(),
		Size:      len(data),
		data:      data,
	}

	m.mu.Lock()
	m.snapshots = append([]Snapshot{snap}, m.snapshots...)
	if m.cfg.MaxBackups > 0 && len(m.snapshots) > m.cfg.MaxBackups {
		evicted := m.snapshots[len(m.snapshots)-1]
		m.snapshots = m.snapshots[:m.cfg.MaxBackups]
		m.log.Debug("evicted oldest snapshot", "id", evicted.ID)
	}
	auto := m.cfg.AutoDownload
	dir := m.cfg.DownloadDir
	m.mu.Unlock()

	m.log.Info("snapshot taken", "id", snap.ID, "size", snap.Size)

	if auto {
		if err := m.writeSnapshotFile(dir, &snap); err != nil {
			m.log.Error("snapshot auto-download failed", "id", snap.ID, "error", err)
		}
	}

	return &snap, nil
}

func (m *Manager) writeSnapshotFile(dir string, snap *Snapshot) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	name := fmt.Sprintf("backup-%s.json", snap.CreatedAt.Format("20060102-150405"))
	return os.WriteFile(filepath.Join(dir, name), snap.data, 0600)
}

// Snapshots lists retained snapshot metadata, newest first.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Snapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// ExportToFile writes the identified snapshot to the given path.
func (m *Manager) ExportToFile(id, path string) error {
	snap, err := m.byID(id)
	if err != nil {
		return err
	}
	return os.WriteFile(path, snap.data, 0600)
}

func (m *Manager) byID(id string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.snapshots {
		if m.snapshots[i].ID == id {
			return &m.snapshots[i], nil
		}
	}
	return nil, ErrNotFound
}

// Restore replaces the store contents with the identified snapshot.
// Destructive: records created after the snapshot are gone.
func (m *Manager) Restore(ctx context.Context, id string) error {
	snap, err := m.byID(id)
	if err != nil {
		return err
	}
	return m.RestoreFromData(ctx, snap.data)
}

// RestoreFromFile restores from a previously exported snapshot file.
func (m *Manager) RestoreFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot file: %w", err)
	}
	return m.RestoreFromData(ctx, data)
}

// RestoreFromData validates and imports a raw snapshot payload. The import
// is atomic: a malformed payload leaves the store exactly as it was.
func (m *Manager) RestoreFromData(ctx context.Context, data []byte) error {
	if err := m.store.Import(ctx, data); err != nil {
		if errors.Is(err, objectstore.ErrStorage) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	m.log.Info("store restored from snapshot", "size", len(data))
	return nil
}
