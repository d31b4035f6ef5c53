package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Servicer is the account service surface the HTTP handlers depend on.
type Servicer interface {
	Register(ctx context.Context, reg Registration) (*Profile, error)
	Authenticate(ctx context.Context, creds Credentials) (*Profile, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error

	Profile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (*Profile, error)
	Settings(ctx context.Context, userID string) (Settings, error)
	UpdateSettings(ctx context.Context, userID string, values Settings) (Settings, error)
	ResetSettings(ctx context.Context, userID string) (Settings, error)
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]Profile, error)
}

type Service struct {
	repo     Repository
	validate Validator
	log      *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: NewValidator(),
		log:      log.With(slog.String("component", "user_service")),
	}
}

func (s *Service) Register(ctx context.Context, reg Registration) (*Profile, error) {
	if err := s.validate.ValidateRegistration(reg); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acc := Account{
		ID:           uuid.NewString(),
		Username:     reg.Username,
		Email:        reg.Email,
		Phone:        reg.Phone,
		PasswordHash: string(hash),
		Role:         RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, &acc); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSettings(ctx, acc.ID, DefaultSettings()); err != nil {
		s.log.Error("seeding default settings failed", "user_id", acc.ID, "error", err)
	}

	s.log.Info("user registered", "user_id", acc.ID)
	profile := acc.Profile()
	return &profile, nil
}

func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*Profile, error) {
	acc, err := s.repo.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidAuth
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(creds.Password)) != nil {
		return nil, ErrInvalidAuth
	}

	now := time.Now()
	acc.LastLoginAt = &now
	if err := s.repo.Update(ctx, acc); err != nil {
		s.log.Error("saving login timestamp failed", "user_id", acc.ID, "error", err)
	}

	profile := acc.Profile()
	return &profile, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := s.validate.ValidatePassword(newPassword); err != nil {
		return err
	}
	acc, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidAuth
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	acc.PasswordHash = string(hash)
	return s.repo.Update(ctx, acc)
}

func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	acc, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := acc.Profile()
	return &profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (*Profile, error) {
	if u.Username != nil {
		if err := s.validate.ValidateUsername(*u.Username); err != nil {
			return nil, err
		}
	}
	acc, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Username != nil {
		acc.Username = *u.Username
	}
	if u.Email != nil {
		acc.Email = *u.Email
	}
	if u.Phone != nil {
		acc.Phone = *u.Phone
	}
	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}
	profile := acc.Profile()
	return &profile, nil
}

func (s *Service) Settings(ctx context.Context, userID string) (Settings, error) {
	values, err := s.repo.Settings(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DefaultSettings(), nil
		}
		return nil, err
	}
	return values, nil
}

func (s *Service) UpdateSettings(ctx context.Context, userID string, values Settings) (Settings, error) {
	current, err := s.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	for k, v := range values {
		current[k] = v
	}
	if err := s.repo.SaveSettings(ctx, userID, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) ResetSettings(ctx context.Context, userID string) (Settings, error) {
	values := DefaultSettings()
	if err := s.repo.SaveSettings(ctx, userID, values); err != nil {
		return nil, err
	}
	return values, nil
}

// Delete removes the account and all owned data.
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info("account deleted", "user_id", userID)
	return nil
}

func (s *Service) List(ctx context.Context) ([]Profile, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]Profile, 0, len(accounts))
	for i := range accounts {
		profiles = append(profiles, accounts[i].Profile())
	}
	return profiles, nil
}
