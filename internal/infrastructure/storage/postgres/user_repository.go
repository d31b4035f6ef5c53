package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"cogniflow/internal/domain/user"
)

// uniqueViolation is the postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewUserRepository(pool *pgxpool.Pool, log *slog.Logger) *UserRepository {
	return &UserRepository{
		pool: pool,
		log:  log.With(slog.String("component", "user_repository")),
	}
}

func (r *UserRepository) Create(ctx context.Context, acc *user.Account) error {
	const query = `
		INSERT INTO users (id, username, email, phone, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		acc.ID, acc.Username, acc.Email, acc.Phone,
		acc.PasswordHash, acc.Role, acc.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrAlreadyExists
		}
		r.log.Error("failed to create user", "user_id", acc.ID, "error", err)
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.Account, error) {
	const query = `
		SELECT id, username, email, phone, password_hash, role, created_at, last_login_at
		FROM users WHERE id = $1`

	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.Account, error) {
	const query = `
		SELECT id, username, email, phone, password_hash, role, created_at, last_login_at
		FROM users WHERE username = $1`

	return r.scanAccount(r.pool.QueryRow(ctx, query, username))
}

func (r *UserRepository) Update(ctx context.Context, acc *user.Account) error {
	const query = `
		UPDATE users SET username = $2, email = $3, phone = $4,
			password_hash = $5, last_login_at = $6
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		acc.ID, acc.Username, acc.Email, acc.Phone, acc.PasswordHash, acc.LastLoginAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrAlreadyExists
		}
		r.log.Error("failed to update user", "user_id", acc.ID, "error", err)
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// Delete removes the account; items, settings, templates and activity
// follow through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete user", "user_id", id, "error", err)
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.Account, error) {
	const query = `
		SELECT id, username, email, phone, password_hash, role, created_at, last_login_at
		FROM users ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list users", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	accounts := make([]user.Account, 0)
	for rows.Next() {
		acc, err := r.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return accounts, nil
}

func (r *UserRepository) Settings(ctx context.Context, userID string) (user.Settings, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT values FROM settings WHERE user_id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		r.log.Error("failed to get settings", "user_id", userID, "error", err)
		return nil, fmt.Errorf("get settings: %w", err)
	}
	var values user.Settings
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return values, nil
}

func (r *UserRepository) SaveSettings(ctx context.Context, userID string, values user.Settings) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	const query = `
		INSERT INTO settings (user_id, values, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET values = $2, updated_at = now()`

	if _, err := r.pool.Exec(ctx, query, userID, raw); err != nil {
		r.log.Error("failed to save settings", "user_id", userID, "error", err)
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (r *UserRepository) scanAccount(row pgx.Row) (*user.Account, error) {
	var acc user.Account
	err := row.Scan(
		&acc.ID, &acc.Username, &acc.Email, &acc.Phone,
		&acc.PasswordHash, &acc.Role, &acc.CreatedAt, &acc.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &acc, nil
}
