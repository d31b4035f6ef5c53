package item

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, it *Item) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, userID string, f Filter) ([]Item, error) {
	args := m.Called(ctx, userID, f)
	return args.Get(0).([]Item), args.Error(1)
}

func (m *MockRepository) ListAll(ctx context.Context, userID string) ([]Item, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]Item), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, userID, id string) (*Item, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, it *Item) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockRepository) ListScheduledEvents(ctx context.Context, userID string) ([]Item, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]Item), args.Error(1)
}

func (m *MockRepository) SetConflictFlags(ctx context.Context, flags map[string]bool) error {
	args := m.Called(ctx, flags)
	return args.Error(0)
}

type MockActivity struct {
	mock.Mock
}

func (m *MockActivity) Record(ctx context.Context, a *Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockActivity) ListByUser(ctx context.Context, userID string, limit int) ([]Activity, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]Activity), args.Error(1)
}

func (m *MockActivity) DeleteByUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func testService(repo *MockRepository) *Service {
	log := slog.New(slog.NewTextHandler(testWriter{}, nil))
	return NewService(repo, nil, NewPairwiseDetector(), log)
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func at(h int) *time.Time {
	t := time.Date(2026, 3, 10, h, 0, 0, 0, time.UTC)
	return &t
}

func TestServiceCreate_RejectsUnknownType(t *testing.T) {
	repo := new(MockRepository)
	svc := testService(repo)

	_, err := svc.Create(context.Background(), "u1", Draft{Type: "reminder", Title: "x"})

	assert.ErrorIs(t, err, ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestServiceCreate_ScheduledEventRecomputesConflicts(t *testing.T) {
	repo := new(MockRepository)
	svc := testService(repo)

	existing := Item{ID: "e1", UserID: "u1", Type: KindEvent, StartTime: at(9), EndTime: at(11)}

	repo.On("Create", mock.Anything, mock.AnythingOfType("*item.Item")).Return(nil).Run(func(args mock.Arguments) {
		created := args.Get(1).(*Item)
		require.NotEmpty(t, created.ID)
		overlap := *created
		repo.On("ListScheduledEvents", mock.Anything, "u1").Return([]Item{existing, overlap}, nil)
		flagged := overlap
		flagged.HasConflict = true
		repo.On("Get", mock.Anything, "u1", created.ID).Return(&flagged, nil)
	})
	repo.On("SetConflictFlags", mock.Anything, mock.MatchedBy(func(flags map[string]bool) bool {
		if len(flags) != 2 {
			return false
		}
		for _, v := range flags {
			if !v {
				return false
			}
		}
		return true
	})).Return(nil)

	created, err := svc.Create(context.Background(), "u1", Draft{
		Type:      KindEvent,
		Title:     "standup",
		StartTime: at(10),
		EndTime:   at(12),
	})

	require.NoError(t, err)
	assert.True(t, created.HasConflict)
	repo.AssertExpectations(t)
}

func TestServiceUpdate_NonEventSkipsRecompute(t *testing.T) {
	repo := new(MockRepository)
	svc := testService(repo)

	stored := &Item{ID: "n1", UserID: "u1", Type: KindNote, Title: "old"}
	repo.On("Get", mock.Anything, "u1", "n1").Return(stored, nil)
	repo.On("Update", mock.Anything, stored).Return(nil)

	title := "new"
	got, err := svc.Update(context.Background(), "u1", "n1", Update{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	repo.AssertNotCalled(t, "ListScheduledEvents")
	repo.AssertNotCalled(t, "SetConflictFlags")
}

func TestServiceDelete_EventClearsPeerFlag(t *testing.T) {
	repo := new(MockRepository)
	svc := testService(repo)

	doomed := &Item{ID: "e1", UserID: "u1", Type: KindEvent, StartTime: at(9), EndTime: at(11), HasConflict: true}
	survivor := Item{ID: "e2", UserID: "u1", Type: KindEvent, StartTime: at(10), EndTime: at(12), HasConflict: true}

	repo.On("Get", mock.Anything, "u1", "e1").Return(doomed, nil)
	repo.On("Update", mock.Anything, doomed).Return(nil)
	// After the delete only the survivor remains scheduled; its flag clears.
	repo.On("ListScheduledEvents", mock.Anything, "u1").Return([]Item{survivor}, nil)
	repo.On("SetConflictFlags", mock.Anything, map[string]bool{"e2": false}).Return(nil)

	err := svc.Delete(context.Background(), "u1", "e1")

	require.NoError(t, err)
	assert.NotNil(t, doomed.DeletedAt)
	repo.AssertExpectations(t)
}

func TestServiceBulkUpdate_SkipsMissingItems(t *testing.T) {
	repo := new(MockRepository)
	svc := testService(repo)

	a := &Item{ID: "a", UserID: "u1", Type: KindTask, Status: StatusPending}
	c := &Item{ID: "c", UserID: "u1", Type: KindTask, Status: StatusPending}
	repo.On("Get", mock.Anything, "u1", "a").Return(a, nil)
	repo.On("Get", mock.Anything, "u1", "b").Return(nil, ErrNotFound)
	repo.On("Get", mock.Anything, "u1", "c").Return(c, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*item.Item")).Return(nil)

	status := StatusCompleted
	updated, err := svc.BulkUpdate(context.Background(), "u1", []string{"a", "b", "c"}, Update{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.Equal(t, StatusCompleted, a.Status)
	assert.Equal(t, StatusCompleted, c.Status)
}

func TestServiceCreate_ConflictPersistFailureDoesNotFailCreate(t *testing.T) {
	repo := new(MockRepository)
	svc := testService(repo)

	existing := Item{ID: "e1", UserID: "u1", Type: KindEvent, StartTime: at(9), EndTime: at(11)}

	repo.On("Create", mock.Anything, mock.AnythingOfType("*item.Item")).Return(nil).Run(func(args mock.Arguments) {
		created := args.Get(1).(*Item)
		repo.On("ListScheduledEvents", mock.Anything, "u1").Return([]Item{existing, *created}, nil)
		repo.On("Get", mock.Anything, "u1", created.ID).Return(created, nil)
	})
	repo.On("SetConflictFlags", mock.Anything, mock.Anything).Return(assert.AnError)

	created, err := svc.Create(context.Background(), "u1", Draft{
		Type:      KindEvent,
		Title:     "standup",
		StartTime: at(10),
		EndTime:   at(12),
	})

	require.NoError(t, err)
	require.NotNil(t, created)
}

func TestServiceActivity_NilRecorderReturnsEmpty(t *testing.T) {
	repo := new(MockRepository)
	svc := testService(repo)

	entries, err := svc.Activity(context.Background(), "u1", 10)

	require.NoError(t, err)
	assert.Empty(t, entries)
}
