package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"

	"cogniflow/internal/domain/user"
	"cogniflow/internal/infrastructure/storage/objectstore"
)

// Accounts is the embedded credential registry. It lives beside the vault
// rather than inside it because account lookup happens before any user is
// authenticated.
type Accounts struct {
	store *objectstore.Store
	log   *slog.Logger
}

func NewAccounts(store *objectstore.Store, log *slog.Logger) *Accounts {
	return &Accounts{
		store: store,
		log:   log.With(slog.String("component", "accounts")),
	}
}

// Register creates a new account with a bcrypt-hashed password.
// ErrAlreadyExists when the username is taken.
func (a *Accounts) Register(ctx context.Context, reg user.Registration, id string, hash []byte) (*user.Account, error) {
	acc := user.Account{
		ID:           id,
		Username:     reg.Username,
		Email:        reg.Email,
		Phone:        reg.Phone,
		PasswordHash: string(hash),
		Role:         user.RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := a.store.Add(ctx, ColUsers, &acc); err != nil {
		if errors.Is(err, objectstore.ErrDuplicateKey) {
			return nil, user.ErrAlreadyExists
		}
		return nil, err
	}
	return &acc, nil
}

// Authenticate checks credentials against the stored hash.
// ErrInvalidAuth covers both unknown usernames and wrong passwords so the
// caller cannot tell which failed.
func (a *Accounts) Authenticate(ctx context.Context, creds user.Credentials) (*user.Account, error) {
	acc, err := a.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrInvalidAuth
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(creds.Password)) != nil {
		return nil, user.ErrInvalidAuth
	}
	return acc, nil
}

func (a *Accounts) FindByUsername(ctx context.Context, username string) (*user.Account, error) {
	docs, err := a.store.GetByIndex(ctx, ColUsers, "username", username)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, user.ErrNotFound
	}
	var acc user.Account
	if err := json.Unmarshal(docs[0], &acc); err != nil {
		return nil, fmt.Errorf("%w: decode account: %v", objectstore.ErrStorage, err)
	}
	return &acc, nil
}

func (a *Accounts) FindByID(ctx context.Context, id string) (*user.Account, error) {
	doc, err := a.store.GetByID(ctx, ColUsers, id)
	if err != nil {
		if errors.Is(err, objectstore.ErrNoRecord) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	var acc user.Account
	if err := json.Unmarshal(doc, &acc); err != nil {
		return nil, fmt.Errorf("%w: decode account: %v", objectstore.ErrStorage, err)
	}
	return &acc, nil
}

// All lists every locally registered account, used by quick login.
func (a *Accounts) All(ctx context.Context) ([]user.Account, error) {
	docs, err := a.store.GetAll(ctx, ColUsers)
	if err != nil {
		return nil, err
	}
	out := make([]user.Account, 0, len(docs))
	for _, doc := range docs {
		var acc user.Account
		if err := json.Unmarshal(doc, &acc); err != nil {
			return nil, fmt.Errorf("%w: decode account: %v", objectstore.ErrStorage, err)
		}
		out = append(out, acc)
	}
	return out, nil
}

// Save persists mutations made by the caller, such as a password change or
// a login timestamp.
func (a *Accounts) Save(ctx context.Context, acc *user.Account) error {
	return a.store.Put(ctx, ColUsers, acc)
}
