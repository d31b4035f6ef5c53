// Package client exposes one data backend to the rest of the application.
// The concrete backend, embedded sqlite or a remote server, is chosen once
// at startup from configuration.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cogniflow/internal/app/client/vault"
	"cogniflow/internal/domain/item"
	"cogniflow/internal/domain/template"
	"cogniflow/internal/domain/user"
)

var (
	// ErrUnauthenticated is shared with the vault so callers match one
	// sentinel regardless of mode.
	ErrUnauthenticated = vault.ErrUnauthenticated

	// ErrNotSupportedInMode marks an operation the active backend cannot
	// perform, such as quick login against a remote server.
	ErrNotSupportedInMode = errors.New("operation not supported in this storage mode")

	// ErrNetworkFailure wraps transport-level errors talking to the remote
	// server. The request may or may not have been applied.
	ErrNetworkFailure = errors.New("network failure")
)

// RemoteError carries a rejection the server explained. Distinct from
// ErrNetworkFailure: the server was reached and said no.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request: %s", e.Message)
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// asRemote reports whether err carries a RemoteError, tolerating nil.
func asRemote(err error, target **RemoteError) bool {
	return err != nil && errors.As(err, target)
}

// AuthEvent notifies subscribers of a committed auth state change.
type AuthEvent struct {
	Type   AuthEventType
	UserID string
}

type AuthEventType string

const (
	AuthLoggedIn  AuthEventType = "logged_in"
	AuthLoggedOut AuthEventType = "logged_out"
)

// Backend is the single surface the CLI and backup manager talk to. Both
// implementations return the same sentinel errors.
type Backend interface {
	// --- auth -----------------------------------------------------------

	Login(ctx context.Context, creds user.Credentials) (*user.Profile, error)
	// QuickLogin re-enters a locally registered account without a password
	// prompt. Embedded mode only.
	QuickLogin(ctx context.Context, username string) (*user.Profile, error)
	Register(ctx context.Context, reg user.Registration) (*user.Profile, error)
	Logout(ctx context.Context) error
	CurrentUser() *user.Profile
	IsAuthenticated() bool
	IsAdmin() bool
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	// ListUsers is an admin view over all accounts. Remote mode only.
	ListUsers(ctx context.Context) ([]user.Profile, error)

	// --- profile and settings -------------------------------------------

	Profile(ctx context.Context) (*user.Profile, error)
	UpdateProfile(ctx context.Context, u user.ProfileUpdate) (*user.Profile, error)
	Settings(ctx context.Context) (user.Settings, error)
	UpdateSettings(ctx context.Context, values user.Settings) (user.Settings, error)
	ResetSettings(ctx context.Context) (user.Settings, error)
	DeleteAccount(ctx context.Context) error

	// --- items ----------------------------------------------------------

	CreateItem(ctx context.Context, d item.Draft) (*item.Item, error)
	Items(ctx context.Context, f item.Filter) ([]item.Item, error)
	ItemByID(ctx context.Context, id string) (*item.Item, error)
	UpdateItem(ctx context.Context, id string, u item.Update) (*item.Item, error)
	DeleteItem(ctx context.Context, id string) error
	ArchiveItem(ctx context.Context, id string) error
	UnarchiveItem(ctx context.Context, id string) error
	BulkUpdate(ctx context.Context, ids []string, u item.Update) (int, error)

	UpcomingItems(ctx context.Context) ([]item.Item, error)
	TodoItems(ctx context.Context) ([]item.Item, error)
	InboxItems(ctx context.Context) ([]item.Item, error)
	SearchItems(ctx context.Context, terms []string) ([]item.Item, error)
	QueryItems(ctx context.Context, q item.Query) ([]item.Item, error)
	CalendarItems(ctx context.Context, start, end time.Time) ([]item.Item, error)
	HistoryByDateRange(ctx context.Context, start, end time.Time) ([]item.Item, error)
	TagStats(ctx context.Context) ([]item.TagStat, error)

	// --- templates ------------------------------------------------------

	Templates(ctx context.Context) ([]template.Template, error)
	CreateTemplate(ctx context.Context, d template.Draft) (*template.Template, error)
	UpdateTemplate(ctx context.Context, id string, d template.Draft) (*template.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	// HealthCheck verifies the backend is usable: server reachability in
	// remote mode, a no-op for the embedded store.
	HealthCheck(ctx context.Context) error

	// Subscribe registers a callback for auth state changes. Callbacks run
	// synchronously after the change commits.
	Subscribe(fn func(AuthEvent))

	Close() error
}

// notifier is the shared auth event fan-out embedded by both backends.
type notifier struct {
	subs []func(AuthEvent)
}

func (n *notifier) Subscribe(fn func(AuthEvent)) {
	n.subs = append(n.subs, fn)
}

func (n *notifier) publish(ev AuthEvent) {
	for _, fn := range n.subs {
		fn(ev)
	}
}
