// Package vault scopes every embedded read and write to the currently
// authenticated user. Nothing above it addresses the object store directly,
// and no call can observe another user's records.
package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"cogniflow/internal/domain/item"
	"cogniflow/internal/domain/user"
	"cogniflow/internal/infrastructure/storage/objectstore"
)

// ErrUnauthenticated is returned before storage is touched when no user is
// active in the ambient auth context.
var ErrUnauthenticated = errors.New("no authenticated user")

// AuthContext resolves the active user. Injected rather than read from a
// package-level singleton so tests and the adapter can supply their own.
type AuthContext interface {
	// CurrentUserID returns the active user's id, or "" when logged out.
	CurrentUserID() string
}

// UserData is the assembled per-user partition: the shape snapshots and
// partition-level export/import use.
type UserData struct {
	Items        []item.Item   `json:"items"`
	Profile      user.Profile  `json:"profile"`
	Settings     user.Settings `json:"settings"`
	LastModified time.Time     `json:"lastModified"`
}

type settingsDoc struct {
	UserID    string        `json:"user_id"`
	Values    user.Settings `json:"values"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type Vault struct {
	store    *objectstore.Store
	auth     AuthContext
	detector item.ConflictDetector
	log      *slog.Logger

	now   func() time.Time
	newID func() string
}

func New(store *objectstore.Store, auth AuthContext, detector item.ConflictDetector, log *slog.Logger) *Vault {
	return &Vault{
		store:    store,
		auth:     auth,
		detector: detector,
		log:      log.With(slog.String("component", "vault")),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (v *Vault) userID() (string, error) {
	id := v.auth.CurrentUserID()
	if id == "" {
		return "", ErrUnauthenticated
	}
	return id, nil
}

// ensureProvisioned lazily creates the default profile and settings for an
// authenticated user whose partition is missing (first use, or a corrupted
// upgrade). Idempotent: duplicate adds from a concurrent first call are
// ignored.
func (v *Vault) ensureProvisioned(ctx context.Context, userID string) error {
	if _, err := v.store.GetByID(ctx, ColProfiles, userID); err != nil {
		if !errors.Is(err, objectstore.ErrNoRecord) {
			return err
		}
		profile := user.Profile{ID: userID, Role: user.RoleUser, CreatedAt: v.now()}
		if err := v.store.Add(ctx, ColProfiles, profile); err != nil && !errors.Is(err, objectstore.ErrDuplicateKey) {
			return err
		}
	}
	if _, err := v.store.GetByID(ctx, ColSettings, userID); err != nil {
		if !errors.Is(err, objectstore.ErrNoRecord) {
			return err
		}
		doc := settingsDoc{UserID: userID, Values: user.DefaultSettings(), UpdatedAt: v.now()}
		if err := v.store.Add(ctx, ColSettings, doc); err != nil && !errors.Is(err, objectstore.ErrDuplicateKey) {
			return err
		}
	}
	return nil
}

func (v *Vault) loadItems(ctx context.Context, userID string) ([]item.Item, error) {
	docs, err := v.store.GetByIndex(ctx, ColItems, "user_id", userID)
	if err != nil {
		return nil, err
	}
	items := make([]item.Item, 0, len(docs))
	for _, doc := range docs {
		var it item.Item
		if err := json.Unmarshal(doc, &it); err != nil {
			return nil, fmt.Errorf("%w: decode item: %v", objectstore.ErrStorage, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// CreateItem stores a new item under the active user and, for scheduled
// events, triggers a best-effort conflict recomputation.
func (v *Vault) CreateItem(ctx context.Context, d item.Draft) (*item.Item, error) {
	userID, err := v.userID()
	if err != nil {
		return nil, err
	}
	if err := v.ensureProvisioned(ctx, userID); err != nil {
		return nil, err
	}

	it := d.Materialize()
	it.ID = v.newID()
	it.UserID = userID
	it.CreatedAt = v.now()
	it.UpdatedAt = it.CreatedAt

	if err := v.store.Add(ctx, ColItems, &it); err != nil {
		return nil, err
	}
	if it.IsScheduledEvent() {
		v.recomputeConflicts(ctx, userID)
		return v.reload(ctx, it.ID)
	}
	return &it, nil
}

// Items lists the active user's items through the given filter. The zero
// filter excludes archived and soft-deleted records.
func (v *Vault) Items(ctx context.Context, f item.Filter) ([]item.Item, error) {
	userID, err := v.userID()
	if err != nil {
		return nil, err
	}
	items, err := v.loadItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	return f.Select(items), nil
}

// ItemByID fetches one item, ErrNotFound for absent, soft-deleted, or
// foreign records.
func (v *Vault) ItemByID(ctx context.Context, id string) (*item.Item, error) {
	userID, err := v.userID()
	if err != nil {
		return nil, err
	}
	doc, err := v.store.GetByID(ctx, ColItems, id)
	if err != nil {
		if errors.Is(err, objectstore.ErrNoRecord) {
			return nil, item.ErrNotFound
		}
		return nil, err
	}
	var it item.Item
	if err := json.Unmarshal(doc, &it); err != nil {
		return nil, fmt.Errorf("%w: decode item: %v", objectstore.ErrStorage, err)
	}
	if it.UserID != userID || it.IsDeleted() {
		return nil, item.ErrNotFound
	}
	return &it, nil
}

// UpdateItem applies a partial update and refreshes conflict flags when the
// schedule of an event may have changed.
func (v *Vault) UpdateItem(ctx context.Context, id string, u item.Update) (*item.Item, error) {
	it, err := v.ItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasScheduled := it.IsScheduledEvent()
	u.Apply(it)
	it.UpdatedAt = v.now()
	if err := v.store.Put(ctx, ColItems, it); err != nil {
		return nil, err
	}
	if it.Type == item.KindEvent && (wasScheduled || it.IsScheduledEvent() || u.TouchesSchedule()) {
		v.recomputeConflicts(ctx, it.UserID)
		return v.reload(ctx, id)
	}
	return it, nil
}

// DeleteItem soft-deletes: the record stays in storage but is excluded from
// every read path from here on.
func (v *Vault) DeleteItem(ctx context.Context, id string) error {
	it, err := v.ItemByID(ctx, id)
	if err != nil {
		return err
	}
	now := v.now()
	it.DeletedAt = &now
	it.UpdatedAt = now
	if err := v.store.Put(ctx, ColItems, it); err != nil {
		return err
	}
	if it.Type == item.KindEvent {
		v.recomputeConflicts(ctx, it.UserID)
	}
	return nil
}

func (v *Vault) ArchiveItem(ctx context.Context, id string) error {
	return v.setArchived(ctx, id, true)
}

func (v *Vault) UnarchiveItem(ctx context.Context, id string) error {
	return v.setArchived(ctx, id, false)
}

func (v *Vault) setArchived(ctx context.Context, id string, archived bool) error {
	it, err := v.ItemByID(ctx, id)
	if err != nil {
		return err
	}
	if archived {
		now := v.now()
		it.ArchivedAt = &now
	} else {
		it.ArchivedAt = nil
	}
	it.UpdatedAt = v.now()
	if err := v.store.Put(ctx, ColItems, it); err != nil {
		return err
	}
	if it.Type == item.KindEvent {
		v.recomputeConflicts(ctx, it.UserID)
	}
	return nil
}

// BulkUpdate applies the same partial update to several items, returning
// how many were touched. Missing ids are skipped, not errors.
func (v *Vault) BulkUpdate(ctx context.Context, ids []string, u item.Update) (int, error) {
	if _, err := v.userID(); err != nil {
		return 0, err
	}
	updated := 0
	schedule := false
	var owner string
	for _, id := range ids {
		it, err := v.ItemByID(ctx, id)
		if err != nil {
			if errors.Is(err, item.ErrNotFound) {
				continue
			}
			return updated, err
		}
		u.Apply(it)
		it.UpdatedAt = v.now()
		if err := v.store.Put(ctx, ColItems, it); err != nil {
			return updated, err
		}
		updated++
		owner = it.UserID
		if it.Type == item.KindEvent {
			schedule = true
		}
	}
	if schedule && u.TouchesSchedule() {
		v.recomputeConflicts(ctx, owner)
	}
	return updated, nil
}

// reload re-reads an item after a conflict pass so the caller sees the
// freshest flag. Falls back to nil on failure rather than failing the
// mutation that already committed.
func (v *Vault) reload(ctx context.Context, id string) (*item.Item, error) {
	it, err := v.ItemByID(ctx, id)
	if err != nil {
		v.log.Error("reload after conflict pass failed", "item_id", id, "error", err)
		return nil, err
	}
	return it, nil
}

// recomputeConflicts rebuilds has_conflict over the user's whole event set
// and persists changed flags in one batch. Failures are logged and
// swallowed: the triggering mutation has already succeeded and the flag is
// eventually consistent by contract.
func (v *Vault) recomputeConflicts(ctx context.Context, userID string) {
	items, err := v.loadItems(ctx, userID)
	if err != nil {
		v.log.Error("conflict recompute: load failed", "user_id", userID, "error", err)
		return
	}
	changed := v.detector.Recompute(items)
	for i := range changed {
		if err := v.store.Put(ctx, ColItems, &changed[i]); err != nil {
			v.log.Error("conflict recompute: persist failed",
				"user_id", userID, "item_id", changed[i].ID, "error", err)
			return
		}
	}
	if len(changed) > 0 {
		v.log.Debug("conflict flags updated", "user_id", userID, "changed", len(changed))
	}
}

// --- derived reads -------------------------------------------------------

func (v *Vault) activeItems(ctx context.Context) ([]item.Item, error) {
	userID, err := v.userID()
	if err != nil {
		return nil, err
	}
	return v.loadItems(ctx, userID)
}

func (v *Vault) UpcomingItems(ctx context.Context) ([]item.Item, error) {
	items, err := v.activeItems(ctx)
	if err != nil {
		return nil, err
	}
	return item.Upcoming(items, v.now()), nil
}

func (v *Vault) TodoItems(ctx context.Context) ([]item.Item, error) {
	items, err := v.activeItems(ctx)
	if err != nil {
		return nil, err
	}
	return item.Todo(items), nil
}

func (v *Vault) InboxItems(ctx context.Context) ([]item.Item, error) {
	items, err := v.activeItems(ctx)
	if err != nil {
		return nil, err
	}
	return item.Inbox(items), nil
}

func (v *Vault) SearchItems(ctx context.Context, terms []string) ([]item.Item, error) {
	items, err := v.activeItems(ctx)
	if err != nil {
		return nil, err
	}
	return item.Search(items, terms), nil
}

func (v *Vault) QueryItems(ctx context.Context, q item.Query) ([]item.Item, error) {
	items, err := v.activeItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]item.Item, 0)
	for i := range items {
		if q.MatchesQuery(&items[i]) {
			out = append(out, items[i])
		}
	}
	item.SortByCreatedDesc(out)
	return out, nil
}

// CalendarItems returns non-deleted, non-archived items whose due date or
// start time falls inside [start, end].
func (v *Vault) CalendarItems(ctx context.Context, start, end time.Time) ([]item.Item, error) {
	items, err := v.activeItems(ctx)
	if err != nil {
		return nil, err
	}
	return item.Calendar(items, start, end), nil
}

// HistoryByDateRange returns non-deleted, non-archived items created inside
// [start, end], newest first.
func (v *Vault) HistoryByDateRange(ctx context.Context, start, end time.Time) ([]item.Item, error) {
	items, err := v.activeItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]item.Item, 0)
	for i := range items {
		it := &items[i]
		if it.IsDeleted() || it.IsArchived() {
			continue
		}
		if it.CreatedAt.Before(start) || it.CreatedAt.After(end) {
			continue
		}
		out = append(out, *it)
	}
	item.SortByCreatedDesc(out)
	return out, nil
}

func (v *Vault) TagStats(ctx context.Context) ([]item.TagStat, error) {
	items, err := v.activeItems(ctx)
	if err != nil {
		return nil, err
	}
	return item.TagStats(items), nil
}

// --- profile and settings ------------------------------------------------

func (v *Vault) Profile(ctx context.Context) (*user.Profile, error) {
	userID, err := v.userID()
	if err != nil {
		return nil, err
	}
	if err := v.ensureProvisioned(ctx, userID); err != nil {
		return nil, err
	}
	doc, err := v.store.GetByID(ctx, ColProfiles, userID)
	if err != nil {
		return nil, err
	}
	var p user.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", objectstore.ErrStorage, err)
	}
	return &p, nil
}

func (v *Vault) UpdateProfile(ctx context.Context, u user.ProfileUpdate) (*user.Profile, error) {
	p, err := v.Profile(ctx)
	if err != nil {
		return nil, err
	}
	u.Apply(p)
	if err := v.store.Put(ctx, ColProfiles, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (v *Vault) Settings(ctx context.Context) (user.Settings, error) {
	userID, err := v.userID()
	if err != nil {
		return nil, err
	}
	if err := v.ensureProvisioned(ctx, userID); err != nil {
		return nil, err
	}
	raw, err := v.store.GetByID(ctx, ColSettings, userID)
	if err != nil {
		return nil, err
	}
	var doc settingsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode settings: %v", objectstore.ErrStorage, err)
	}
	return doc.Values, nil
}

func (v *Vault) UpdateSettings(ctx context.Context, values user.Settings) (user.Settings, error) {
	current, err := v.Settings(ctx)
	if err != nil {
		return nil, err
	}
	for k, val := range values {
		current[k] = val
	}
	userID, _ := v.userID()
	doc := settingsDoc{UserID: userID, Values: current, UpdatedAt: v.now()}
	if err := v.store.Put(ctx, ColSettings, doc); err != nil {
		return nil, err
	}
	return current, nil
}

func (v *Vault) ResetSettings(ctx context.Context) (user.Settings, error) {
	userID, err := v.userID()
	if err != nil {
		return nil, err
	}
	doc := settingsDoc{UserID: userID, Values: user.DefaultSettings(), UpdatedAt: v.now()}
	if err := v.store.Put(ctx, ColSettings, doc); err != nil {
		return nil, err
	}
	return doc.Values, nil
}

// --- partition assembly --------------------------------------------------

// UserData assembles the active user's whole partition. Items include
// archived records but not soft-deleted ones.
func (v *Vault) UserData(ctx context.Context) (*UserData, error) {
	userID, err := v.userID()
	if err != nil {
		return nil, err
	}
	if err := v.ensureProvisioned(ctx, userID); err != nil {
		return nil, err
	}
	profile, err := v.Profile(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := v.Settings(ctx)
	if err != nil {
		return nil, err
	}
	items, err := v.loadItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := make([]item.Item, 0, len(items))
	var last time.Time
	for i := range items {
		if items[i].IsDeleted() {
			continue
		}
		kept = append(kept, items[i])
		if items[i].UpdatedAt.After(last) {
			last = items[i].UpdatedAt
		}
	}
	return &UserData{Items: kept, Profile: *profile, Settings: settings, LastModified: last}, nil
}

// SaveUserData replaces the active user's partition with the supplied
// document and stamps LastModified. Items are rewritten wholesale; records
// belonging to other users are untouched.
func (v *Vault) SaveUserData(ctx context.Context, data *UserData) error {
	userID, err := v.userID()
	if err != nil {
		return err
	}
	existing, err := v.loadItems(ctx, userID)
	if err != nil {
		return err
	}
	for i := range existing {
		if err := v.store.Delete(ctx, ColItems, existing[i].ID); err != nil {
			return err
		}
	}
	now := v.now()
	for i := range data.Items {
		it := data.Items[i]
		it.UserID = userID
		if err := v.store.Put(ctx, ColItems, &it); err != nil {
			return err
		}
	}
	profile := data.Profile
	profile.ID = userID
	if err := v.store.Put(ctx, ColProfiles, &profile); err != nil {
		return err
	}
	doc := settingsDoc{UserID: userID, Values: data.Settings, UpdatedAt: now}
	if err := v.store.Put(ctx, ColSettings, doc); err != nil {
		return err
	}
	data.LastModified = now
	return nil
}

// DeleteAccount removes every trace of the active user: items, templates,
// settings, profile and the account record itself.
func (v *Vault) DeleteAccount(ctx context.Context) error {
	userID, err := v.userID()
	if err != nil {
		return err
	}
	items, err := v.loadItems(ctx, userID)
	if err != nil {
		return err
	}
	for i := range items {
		if err := v.store.Delete(ctx, ColItems, items[i].ID); err != nil {
			return err
		}
	}
	tpls, err := v.store.GetByIndex(ctx, ColTemplates, "user_id", userID)
	if err != nil {
		return err
	}
	for _, raw := range tpls {
		var t struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &t); err != nil {
			continue
		}
		if err := v.store.Delete(ctx, ColTemplates, t.ID); err != nil {
			return err
		}
	}
	if err := v.store.Delete(ctx, ColSettings, userID); err != nil {
		return err
	}
	if err := v.store.Delete(ctx, ColProfiles, userID); err != nil {
		return err
	}
	return v.store.Delete(ctx, ColUsers, userID)
}
