package user

import "context"

// Repository is the server-side account store.
type Repository interface {
	Create(ctx context.Context, acc *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	Update(ctx context.Context, acc *Account) error
	// Delete removes the account and, through foreign keys, everything the
	// user owns.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Account, error)

	Settings(ctx context.Context, userID string) (Settings, error)
	SaveSettings(ctx context.Context, userID string, values Settings) error
}
