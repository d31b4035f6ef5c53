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

	"cogniflow/internal/domain/template"
)

const templateColumns = `
	id, user_id, trigger_word, template_name, icon, collection_type,
	default_tags, default_sub_items, color, is_active, sort_order,
	usage_count, created_at, updated_at`

type TemplateRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewTemplateRepository(pool *pgxpool.Pool, log *slog.Logger) *TemplateRepository {
	return &TemplateRepository{
		pool: pool,
		log:  log.With(slog.String("component", "template_repository")),
	}
}

func (r *TemplateRepository) Create(ctx context.Context, t *template.Template) error {
	tags, subItems, err := encodeTemplateJSON(t)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.TriggerWord, t.TemplateName, t.Icon, t.CollectionType,
		tags, subItems, t.Color, t.IsActive, t.SortOrder,
		t.UsageCount, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return template.ErrDuplicateTrigger
		}
		r.log.Error("failed to create template", "template_id", t.ID, "error", err)
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) ListByUser(ctx context.Context, userID string) ([]template.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates
		WHERE user_id = $1 ORDER BY sort_order, created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("failed to list templates", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]template.Template, 0)
	for rows.Next() {
		t, err := r.scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

func (r *TemplateRepository) Get(ctx context.Context, userID, id string) (*template.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates
		WHERE id = $1 AND user_id = $2`

	t, err := r.scanTemplate(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, template.ErrNotFound
		}
		r.log.Error("failed to get template", "template_id", id, "error", err)
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (r *TemplateRepository) Update(ctx context.Context, t *template.Template) error {
	tags, subItems, err := encodeTemplateJSON(t)
	if err != nil {
		return err
	}

	const query = `
		UPDATE templates SET
			trigger_word = $3, template_name = $4, icon = $5,
			collection_type = $6, default_tags = $7, default_sub_items = $8,
			color = $9, is_active = $10, sort_order = $11, usage_count = $12,
			updated_at = $13
		WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.TriggerWord, t.TemplateName, t.Icon,
		t.CollectionType, tags, subItems, t.Color, t.IsActive, t.SortOrder,
		t.UsageCount, t.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return template.ErrDuplicateTrigger
		}
		r.log.Error("failed to update template", "template_id", t.ID, "error", err)
		return fmt.Errorf("update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return template.ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.log.Error("failed to delete template", "template_id", id, "error", err)
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return template.ErrNotFound
	}
	return nil
}

func (r *TemplateRepository) scanTemplate(row pgx.Row) (*template.Template, error) {
	var (
		t        template.Template
		tags     []byte
		subItems []byte
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.TriggerWord, &t.TemplateName, &t.Icon,
		&t.CollectionType, &tags, &subItems, &t.Color, &t.IsActive,
		&t.SortOrder, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &t.DefaultTags); err != nil {
			return nil, fmt.Errorf("decode default tags: %w", err)
		}
	}
	if len(subItems) > 0 {
		if err := json.Unmarshal(subItems, &t.DefaultSubItems); err != nil {
			return nil, fmt.Errorf("decode default sub-items: %w", err)
		}
	}
	return &t, nil
}

func encodeTemplateJSON(t *template.Template) (tags, subItems []byte, err error) {
	if t.DefaultTags == nil {
		tags = []byte("[]")
	} else if tags, err = json.Marshal(t.DefaultTags); err != nil {
		return nil, nil, fmt.Errorf("encode default tags: %w", err)
	}
	if t.DefaultSubItems != nil {
		if subItems, err = json.Marshal(t.DefaultSubItems); err != nil {
			return nil, nil, fmt.Errorf("encode default sub-items: %w", err)
		}
	}
	return tags, subItems, nil
}
