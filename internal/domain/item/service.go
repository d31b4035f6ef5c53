package item

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Servicer is the item service surface the HTTP handlers depend on.
type Servicer interface {
	Create(ctx context.Context, userID string, d Draft) (*Item, error)
	List(ctx context.Context, userID string, f Filter) ([]Item, error)
	Get(ctx context.Context, userID, id string) (*Item, error)
	Update(ctx context.Context, userID, id string, u Update) (*Item, error)
	Delete(ctx context.Context, userID, id string) error
	Archive(ctx context.Context, userID, id string) error
	Unarchive(ctx context.Context, userID, id string) error
	BulkUpdate(ctx context.Context, userID string, ids []string, u Update) (int, error)

	Query(ctx context.Context, userID string, q Query) ([]Item, error)
	Search(ctx context.Context, userID string, terms []string) ([]Item, error)
	Calendar(ctx context.Context, userID string, start, end time.Time) ([]Item, error)
	History(ctx context.Context, userID string, start, end time.Time) ([]Item, error)
	Tags(ctx context.Context, userID string) ([]TagStat, error)
	Upcoming(ctx context.Context, userID string) ([]Item, error)
	Todo(ctx context.Context, userID string) ([]Item, error)
	Inbox(ctx context.Context, userID string) ([]Item, error)

	Activity(ctx context.Context, userID string, limit int) ([]Activity, error)
}

type Service struct {
	repo     Repository
	activity ActivityRecorder
	detector ConflictDetector
	log      *slog.Logger
}

func NewService(repo Repository, activity ActivityRecorder, detector ConflictDetector, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		activity: activity,
		detector: detector,
		log:      log.With(slog.String("component", "item_service")),
	}
}

func (s *Service) Create(ctx context.Context, userID string, d Draft) (*Item, error) {
	if !d.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown item type %q", ErrInvalidInput, d.Type)
	}

	it := d.Materialize()
	it.ID = uuid.NewString()
	it.UserID = userID
	it.CreatedAt = time.Now()
	it.UpdatedAt = it.CreatedAt

	if err := s.repo.Create(ctx, &it); err != nil {
		return nil, err
	}
	s.record(ctx, userID, "item.create", it.ID, string(it.Type))

	if it.IsScheduledEvent() {
		s.recomputeConflicts(ctx, userID)
		return s.repo.Get(ctx, userID, it.ID)
	}
	return &it, nil
}

func (s *Service) List(ctx context.Context, userID string, f Filter) ([]Item, error) {
	return s.repo.List(ctx, userID, f)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Item, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *Service) Update(ctx context.Context, userID, id string, u Update) (*Item, error) {
	it, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	wasScheduled := it.IsScheduledEvent()
	u.Apply(it)
	it.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}
	s.record(ctx, userID, "item.update", id, "")

	if it.Type == KindEvent && (wasScheduled || it.IsScheduledEvent() || u.TouchesSchedule()) {
		s.recomputeConflicts(ctx, userID)
		return s.repo.Get(ctx, userID, id)
	}
	return it, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	it, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	now := time.Now()
	it.DeletedAt = &now
	it.UpdatedAt = now
	if err := s.repo.Update(ctx, it); err != nil {
		return err
	}
	s.record(ctx, userID, "item.delete", id, "")

	if it.Type == KindEvent {
		s.recomputeConflicts(ctx, userID)
	}
	return nil
}

func (s *Service) Archive(ctx context.Context, userID, id string) error {
	return s.setArchived(ctx, userID, id, true)
}

func (s *Service) Unarchive(ctx context.Context, userID, id string) error {
	return s.setArchived(ctx, userID, id, false)
}

func (s *Service) setArchived(ctx context.Context, userID, id string, archived bool) error {
	it, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	now := time.Now()
	if archived {
		it.ArchivedAt = &now
	} else {
		it.ArchivedAt = nil
	}
	it.UpdatedAt = now
	if err := s.repo.Update(ctx, it); err != nil {
		return err
	}
	action := "item.archive"
	if !archived {
		action = "item.unarchive"
	}
	s.record(ctx, userID, action, id, "")

	if it.Type == KindEvent {
		s.recomputeConflicts(ctx, userID)
	}
	return nil
}

func (s *Service) BulkUpdate(ctx context.Context, userID string, ids []string, u Update) (int, error) {
	updated := 0
	schedule := false
	for _, id := range ids {
		it, err := s.repo.Get(ctx, userID, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return updated, err
		}
		u.Apply(it)
		it.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, it); err != nil {
			return updated, err
		}
		updated++
		if it.Type == KindEvent {
			schedule = true
		}
	}
	s.record(ctx, userID, "item.bulk_update", "", fmt.Sprintf("%d items", updated))

	if schedule && u.TouchesSchedule() {
		s.recomputeConflicts(ctx, userID)
	}
	return updated, nil
}

// recomputeConflicts rebuilds the has_conflict flag over the user's events.
// Best effort: a failure here is logged, the triggering mutation stands.
func (s *Service) recomputeConflicts(ctx context.Context, userID string) {
	events, err := s.repo.ListScheduledEvents(ctx, userID)
	if err != nil {
		s.log.Error("conflict recompute: load failed", "user_id", userID, "error", err)
		return
	}
	changed := s.detector.Recompute(events)
	if len(changed) == 0 {
		return
	}
	flags := make(map[string]bool, len(changed))
	for i := range changed {
		flags[changed[i].ID] = changed[i].HasConflict
	}
	if err := s.repo.SetConflictFlags(ctx, flags); err != nil {
		s.log.Error("conflict recompute: persist failed", "user_id", userID, "error", err)
		return
	}
	s.log.Debug("conflict flags updated", "user_id", userID, "changed", len(changed))
}

func (s *Service) record(ctx context.Context, userID, action, itemID, detail string) {
	if s.activity == nil {
		return
	}
	err := s.activity.Record(ctx, &Activity{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		ItemID:    itemID,
		Detail:    detail,
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.log.Error("recording activity failed", "action", action, "error", err)
	}
}

// --- derived reads -------------------------------------------------------

// all loads the default working set once; the derived views share the same
// in-memory helpers the embedded client uses, so both modes agree.
func (s *Service) all(ctx context.Context, userID string) ([]Item, error) {
	return s.repo.ListAll(ctx, userID)
}

func (s *Service) Query(ctx context.Context, userID string, q Query) ([]Item, error) {
	items, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0)
	for i := range items {
		if q.MatchesQuery(&items[i]) {
			out = append(out, items[i])
		}
	}
	SortByCreatedDesc(out)
	return out, nil
}

func (s *Service) Search(ctx context.Context, userID string, terms []string) ([]Item, error) {
	items, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Search(items, terms), nil
}

func (s *Service) Calendar(ctx context.Context, userID string, start, end time.Time) ([]Item, error) {
	items, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Calendar(items, start, end), nil
}

func (s *Service) History(ctx context.Context, userID string, start, end time.Time) ([]Item, error) {
	items, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0)
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
	SortByCreatedDesc(out)
	return out, nil
}

func (s *Service) Tags(ctx context.Context, userID string) ([]TagStat, error) {
	items, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}
	return TagStats(items), nil
}

func (s *Service) Upcoming(ctx context.Context, userID string) ([]Item, error) {
	items, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Upcoming(items, time.Now()), nil
}

func (s *Service) Todo(ctx context.Context, userID string) ([]Item, error) {
	items, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Todo(items), nil
}

func (s *Service) Inbox(ctx context.Context, userID string) ([]Item, error) {
	items, err := s.all(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Inbox(items), nil
}

func (s *Service) Activity(ctx context.Context, userID string, limit int) ([]Activity, error) {
	if s.activity == nil {
		return []Activity{}, nil
	}
	return s.activity.ListByUser(ctx, userID, limit)
}
