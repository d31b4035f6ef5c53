package template

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Servicer is the template service surface the HTTP handlers depend on.
type Servicer interface {
	List(ctx context.Context, userID string) ([]Template, error)
	Create(ctx context.Context, userID string, d Draft) (*Template, error)
	Update(ctx context.Context, userID, id string, d Draft) (*Template, error)
	Delete(ctx context.Context, userID, id string) error
	ProvisionDefaults(ctx context.Context, userID string) error
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With(slog.String("component", "template_service")),
	}
}

func (s *Service) List(ctx context.Context, userID string) ([]Template, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Create(ctx context.Context, userID string, d Draft) (*Template, error) {
	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if strings.EqualFold(existing[i].TriggerWord, d.TriggerWord) {
			return nil, ErrDuplicateTrigger
		}
	}
	now := time.Now()
	t := Template{
		ID:              uuid.NewString(),
		UserID:          userID,
		TriggerWord:     d.TriggerWord,
		TemplateName:    d.TemplateName,
		Icon:            d.Icon,
		CollectionType:  d.CollectionType,
		DefaultTags:     d.DefaultTags,
		DefaultSubItems: d.DefaultSubItems,
		Color:           d.Color,
		IsActive:        true,
		SortOrder:       d.SortOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, d Draft) (*Template, error) {
	t, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if d.TriggerWord != "" {
		t.TriggerWord = d.TriggerWord
	}
	if d.TemplateName != "" {
		t.TemplateName = d.TemplateName
	}
	if d.Icon != "" {
		t.Icon = d.Icon
	}
	if d.CollectionType != "" {
		t.CollectionType = d.CollectionType
	}
	if d.DefaultTags != nil {
		t.DefaultTags = d.DefaultTags
	}
	if d.DefaultSubItems != nil {
		t.DefaultSubItems = d.DefaultSubItems
	}
	if d.Color != "" {
		t.Color = d.Color
	}
	t.SortOrder = d.SortOrder
	t.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// ProvisionDefaults seeds the built-in template set for a new account.
func (s *Service) ProvisionDefaults(ctx context.Context, userID string) error {
	for _, d := range Defaults() {
		if _, err := s.Create(ctx, userID, d); err != nil {
			if errors.Is(err, ErrDuplicateTrigger) {
				continue
			}
			return err
		}
	}
	return nil
}
