package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"cogniflow/internal/domain/item"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewActivityRepository(pool *pgxpool.Pool, log *slog.Logger) *ActivityRepository {
	return &ActivityRepository{
		pool: pool,
		log:  log.With(slog.String("component", "activity_repository")),
	}
}

func (r *ActivityRepository) Record(ctx context.Context, a *item.Activity) error {
	const query = `
		INSERT INTO activity (id, user_id, action, item_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.UserID, a.Action, a.ItemID, a.Detail, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]item.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, user_id, action, item_id, detail, created_at
		FROM activity WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		r.log.Error("failed to list activity", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	entries := make([]item.Activity, 0)
	for rows.Next() {
		var a item.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.ItemID, &a.Detail, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entries = append(entries, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return entries, nil
}

func (r *ActivityRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM activity WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}
