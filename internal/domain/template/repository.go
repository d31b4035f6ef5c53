package template

import "context"

// Repository is the server-side template store.
type Repository interface {
	Create(ctx context.Context, t *Template) error
	ListByUser(ctx context.Context, userID string) ([]Template, error)
	Get(ctx context.Context, userID, id string) (*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, userID, id string) error
}
