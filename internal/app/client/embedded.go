package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"

	"cogniflow/internal/app/client/config"
	"cogniflow/internal/app/client/vault"
	"cogniflow/internal/domain/item"
	"cogniflow/internal/domain/template"
	"cogniflow/internal/domain/user"
	"cogniflow/internal/infrastructure/storage/objectstore"
)

// embeddedBackend keeps every record in a local sqlite file. Auth is a
// local bcrypt check; nothing ever leaves the machine.
type embeddedBackend struct {
	notifier

	store    *objectstore.Store
	vault    *vault.Vault
	accounts *vault.Accounts
	sessions *sessionStore
	validate user.Validator
	log      *slog.Logger

	current *user.Profile
}

// CurrentUserID implements vault.AuthContext.
func (b *embeddedBackend) CurrentUserID() string {
	if b.current == nil {
		return ""
	}
	return b.current.ID
}

func newEmbeddedBackend(cfg *config.Config, log *slog.Logger) (*embeddedBackend, error) {
	store, err := objectstore.Open(cfg.DataPath, vault.Schemas(), log)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	b := &embeddedBackend{
		store:    store,
		accounts: vault.NewAccounts(store, log),
		sessions: newSessionStore(cfg.TokenPath),
		validate: user.NewValidator(),
		log:      log.With(slog.String("component", "embedded")),
	}
	b.vault = vault.New(store, b, item.NewPairwiseDetector(), log)

	// Resume the previous session if one was saved for this mode.
	if sess, err := b.sessions.Load(); err == nil && sess != nil && sess.Mode == config.ModeEmbedded {
		profile := sess.Profile
		b.current = &profile
	}

	return b, nil
}

// Store exposes the underlying object store for the snapshot manager.
func (b *embeddedBackend) Store() *objectstore.Store { return b.store }

func (b *embeddedBackend) Close() error { return b.store.Close() }

// HealthCheck is trivially healthy: the store was opened at construction.
func (b *embeddedBackend) HealthCheck(context.Context) error { return nil }

// ExportUserData assembles the signed-in user's whole partition.
func (b *embeddedBackend) ExportUserData(ctx context.Context) (*vault.UserData, error) {
	return b.vault.UserData(ctx)
}

// ImportUserData replaces the signed-in user's partition wholesale.
func (b *embeddedBackend) ImportUserData(ctx context.Context, data *vault.UserData) error {
	return b.vault.SaveUserData(ctx, data)
}

// --- auth ----------------------------------------------------------------

func (b *embeddedBackend) Login(ctx context.Context, creds user.Credentials) (*user.Profile, error) {
	acc, err := b.accounts.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}
	return b.enter(ctx, acc)
}

// QuickLogin re-enters a known local account without a password. Local
// data is only as private as the sqlite file itself, so this is a
// convenience, not a security boundary.
func (b *embeddedBackend) QuickLogin(ctx context.Context, username string) (*user.Profile, error) {
	acc, err := b.accounts.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return b.enter(ctx, acc)
}

func (b *embeddedBackend) Register(ctx context.Context, reg user.Registration) (*user.Profile, error) {
	if err := b.validate.ValidateRegistration(reg); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acc, err := b.accounts.Register(ctx, reg, uuid.NewString(), hash)
	if err != nil {
		return nil, err
	}
	profile, err := b.enter(ctx, acc)
	if err != nil {
		return nil, err
	}
	if err := b.vault.ProvisionDefaultTemplates(ctx); err != nil {
		b.log.Error("seeding default templates failed", "user_id", acc.ID, "error", err)
	}
	return profile, nil
}

func (b *embeddedBackend) enter(ctx context.Context, acc *user.Account) (*user.Profile, error) {
	now := time.Now()
	acc.LastLoginAt = &now
	if err := b.accounts.Save(ctx, acc); err != nil {
		b.log.Error("saving login timestamp failed", "user_id", acc.ID, "error", err)
	}

	profile := acc.Profile()
	b.current = &profile
	if err := b.sessions.Save(&session{Mode: config.ModeEmbedded, Profile: profile, CreatedAt: now}); err != nil {
		b.log.Error("persisting session failed", "error", err)
	}
	b.publish(AuthEvent{Type: AuthLoggedIn, UserID: profile.ID})
	return &profile, nil
}

func (b *embeddedBackend) Logout(ctx context.Context) error {
	if b.current == nil {
		return nil
	}
	id := b.current.ID
	b.current = nil
	if err := b.sessions.Clear(); err != nil {
		return err
	}
	b.publish(AuthEvent{Type: AuthLoggedOut, UserID: id})
	return nil
}

func (b *embeddedBackend) CurrentUser() *user.Profile { return b.current }

func (b *embeddedBackend) IsAuthenticated() bool { return b.current != nil }

func (b *embeddedBackend) IsAdmin() bool {
	return b.current != nil && b.current.IsAdmin()
}

func (b *embeddedBackend) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if b.current == nil {
		return ErrUnauthenticated
	}
	if err := b.validate.ValidatePassword(newPassword); err != nil {
		return err
	}
	acc, err := b.accounts.FindByID(ctx, b.current.ID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(oldPassword)) != nil {
		return user.ErrInvalidAuth
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	acc.PasswordHash = string(hash)
	return b.accounts.Save(ctx, acc)
}

// ListUsers is a server-side admin view; there is no equivalent over a
// single local file.
func (b *embeddedBackend) ListUsers(ctx context.Context) ([]user.Profile, error) {
	return nil, ErrNotSupportedInMode
}

// --- delegated to the vault ----------------------------------------------

func (b *embeddedBackend) Profile(ctx context.Context) (*user.Profile, error) {
	return b.vault.Profile(ctx)
}

func (b *embeddedBackend) UpdateProfile(ctx context.Context, u user.ProfileUpdate) (*user.Profile, error) {
	p, err := b.vault.UpdateProfile(ctx, u)
	if err != nil {
		return nil, err
	}
	b.current = p
	return p, nil
}

func (b *embeddedBackend) Settings(ctx context.Context) (user.Settings, error) {
	return b.vault.Settings(ctx)
}

func (b *embeddedBackend) UpdateSettings(ctx context.Context, values user.Settings) (user.Settings, error) {
	return b.vault.UpdateSettings(ctx, values)
}

func (b *embeddedBackend) ResetSettings(ctx context.Context) (user.Settings, error) {
	return b.vault.ResetSettings(ctx)
}

func (b *embeddedBackend) DeleteAccount(ctx context.Context) error {
	if err := b.vault.DeleteAccount(ctx); err != nil {
		return err
	}
	return b.Logout(ctx)
}

func (b *embeddedBackend) CreateItem(ctx context.Context, d item.Draft) (*item.Item, error) {
	return b.vault.CreateItem(ctx, d)
}

func (b *embeddedBackend) Items(ctx context.Context, f item.Filter) ([]item.Item, error) {
	return b.vault.Items(ctx, f)
}

func (b *embeddedBackend) ItemByID(ctx context.Context, id string) (*item.Item, error) {
	return b.vault.ItemByID(ctx, id)
}

func (b *embeddedBackend) UpdateItem(ctx context.Context, id string, u item.Update) (*item.Item, error) {
	return b.vault.UpdateItem(ctx, id, u)
}

func (b *embeddedBackend) DeleteItem(ctx context.Context, id string) error {
	return b.vault.DeleteItem(ctx, id)
}

func (b *embeddedBackend) ArchiveItem(ctx context.Context, id string) error {
	return b.vault.ArchiveItem(ctx, id)
}

func (b *embeddedBackend) UnarchiveItem(ctx context.Context, id string) error {
	return b.vault.UnarchiveItem(ctx, id)
}

func (b *embeddedBackend) BulkUpdate(ctx context.Context, ids []string, u item.Update) (int, error) {
	return b.vault.BulkUpdate(ctx, ids, u)
}

func (b *embeddedBackend) UpcomingItems(ctx context.Context) ([]item.Item, error) {
	return b.vault.UpcomingItems(ctx)
}

func (b *embeddedBackend) TodoItems(ctx context.Context) ([]item.Item, error) {
	return b.vault.TodoItems(ctx)
}

func (b *embeddedBackend) InboxItems(ctx context.Context) ([]item.Item, error) {
	return b.vault.InboxItems(ctx)
}

func (b *embeddedBackend) SearchItems(ctx context.Context, terms []string) ([]item.Item, error) {
	return b.vault.SearchItems(ctx, terms)
}

func (b *embeddedBackend) QueryItems(ctx context.Context, q item.Query) ([]item.Item, error) {
	return b.vault.QueryItems(ctx, q)
}

func (b *embeddedBackend) CalendarItems(ctx context.Context, start, end time.Time) ([]item.Item, error) {
	return b.vault.CalendarItems(ctx, start, end)
}

func (b *embeddedBackend) HistoryByDateRange(ctx context.Context, start, end time.Time) ([]item.Item, error) {
	return b.vault.HistoryByDateRange(ctx, start, end)
}

func (b *embeddedBackend) TagStats(ctx context.Context) ([]item.TagStat, error) {
	return b.vault.TagStats(ctx)
}

func (b *embeddedBackend) Templates(ctx context.Context) ([]template.Template, error) {
	return b.vault.Templates(ctx)
}

func (b *embeddedBackend) CreateTemplate(ctx context.Context, d template.Draft) (*template.Template, error) {
	return b.vault.CreateTemplate(ctx, d)
}

func (b *embeddedBackend) UpdateTemplate(ctx context.Context, id string, d template.Draft) (*template.Template, error) {
	return b.vault.UpdateTemplate(ctx, id, d)
}

func (b *embeddedBackend) DeleteTemplate(ctx context.Context, id string) error {
	return b.vault.DeleteTemplate(ctx, id)
}
