package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"cogniflow/internal/domain/item"
)

const itemColumns = `
	id, user_id, raw_text, type, title, description, due_date, priority,
	status, tags, entities, created_at, updated_at, archived_at, deleted_at,
	url, url_title, url_summary, url_thumbnail, url_fetched_at, has_conflict,
	start_time, end_time, recurrence_rule, recurrence_end_date,
	master_item_id, is_master, collection_type, sub_items`

type ItemRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewItemRepository(pool *pgxpool.Pool, log *slog.Logger) *ItemRepository {
	return &ItemRepository{
		pool: pool,
		log:  log.With(slog.String("component", "item_repository")),
	}
}

func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	tags, entities, subItems, err := encodeItemJSON(it)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26,
		        $27, $28, $29)`

	_, err = r.pool.Exec(ctx, query,
		it.ID, it.UserID, it.RawText, it.Type, it.Title, it.Description,
		it.DueDate, it.Priority, it.Status, tags, entities,
		it.CreatedAt, it.UpdatedAt, it.ArchivedAt, it.DeletedAt,
		it.URL, it.URLTitle, it.URLSummary, it.URLThumbnail, it.URLFetchedAt,
		it.HasConflict, it.StartTime, it.EndTime,
		it.RecurrenceRule, it.RecurrenceEndDate,
		it.MasterItemID, it.IsMaster, it.CollectionType, subItems,
	)
	if err != nil {
		r.log.Error("failed to create item", "item_id", it.ID, "error", err)
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (r *ItemRepository) List(ctx context.Context, userID string, f item.Filter) ([]item.Item, error) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	if !f.IncludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if f.Archived == nil {
		conds = append(conds, "archived_at IS NULL")
	} else if *f.Archived {
		conds = append(conds, "archived_at IS NOT NULL")
	} else {
		conds = append(conds, "archived_at IS NULL")
	}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Tag != "" {
		tagJSON, _ := json.Marshal([]string{f.Tag})
		args = append(args, string(tagJSON))
		conds = append(conds, fmt.Sprintf("tags @> $%d::jsonb", len(args)))
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("failed to list items", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	return r.scanItems(rows)
}

func (r *ItemRepository) ListAll(ctx context.Context, userID string) ([]item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("failed to list all items", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list all items: %w", err)
	}
	defer rows.Close()

	return r.scanItems(rows)
}

func (r *ItemRepository) Get(ctx context.Context, userID, id string) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	row := r.pool.QueryRow(ctx, query, id, userID)

	it, err := r.scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, item.ErrNotFound
		}
		r.log.Error("failed to get item", "item_id", id, "user_id", userID, "error", err)
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (r *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	tags, entities, subItems, err := encodeItemJSON(it)
	if err != nil {
		return err
	}

	const query = `
		UPDATE items SET
			raw_text = $3, type = $4, title = $5, description = $6,
			due_date = $7, priority = $8, status = $9, tags = $10,
			entities = $11, updated_at = $12, archived_at = $13,
			deleted_at = $14, url = $15, url_title = $16, url_summary = $17,
			url_thumbnail = $18, url_fetched_at = $19, has_conflict = $20,
			start_time = $21, end_time = $22, recurrence_rule = $23,
			recurrence_end_date = $24, master_item_id = $25, is_master = $26,
			collection_type = $27, sub_items = $28
		WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query,
		it.ID, it.UserID, it.RawText, it.Type, it.Title, it.Description,
		it.DueDate, it.Priority, it.Status, tags, entities,
		it.UpdatedAt, it.ArchivedAt, it.DeletedAt,
		it.URL, it.URLTitle, it.URLSummary, it.URLThumbnail, it.URLFetchedAt,
		it.HasConflict, it.StartTime, it.EndTime,
		it.RecurrenceRule, it.RecurrenceEndDate,
		it.MasterItemID, it.IsMaster, it.CollectionType, subItems,
	)
	if err != nil {
		r.log.Error("failed to update item", "item_id", it.ID, "error", err)
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return item.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) ListScheduledEvents(ctx context.Context, userID string) ([]item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
		WHERE user_id = $1 AND type = 'event' AND deleted_at IS NULL
		  AND start_time IS NOT NULL AND end_time IS NOT NULL
		ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("failed to list scheduled events", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list scheduled events: %w", err)
	}
	defer rows.Close()

	return r.scanItems(rows)
}

// SetConflictFlags writes every recomputed flag in one transaction so a
// reader never sees a half-applied recompute.
func (r *ItemRepository) SetConflictFlags(ctx context.Context, flags map[string]bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin conflict update: %w", err)
	}
	defer tx.Rollback(ctx)

	for id, hasConflict := range flags {
		_, err := tx.Exec(ctx,
			`UPDATE items SET has_conflict = $2 WHERE id = $1`, id, hasConflict)
		if err != nil {
			return fmt.Errorf("set conflict flag: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit conflict update: %w", err)
	}
	return nil
}

func (r *ItemRepository) scanItems(rows pgx.Rows) ([]item.Item, error) {
	items := make([]item.Item, 0)
	for rows.Next() {
		it, err := r.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) scanItem(row pgx.Row) (*item.Item, error) {
	var (
		it       item.Item
		tags     []byte
		entities []byte
		subItems []byte
	)
	err := row.Scan(
		&it.ID, &it.UserID, &it.RawText, &it.Type, &it.Title, &it.Description,
		&it.DueDate, &it.Priority, &it.Status, &tags, &entities,
		&it.CreatedAt, &it.UpdatedAt, &it.ArchivedAt, &it.DeletedAt,
		&it.URL, &it.URLTitle, &it.URLSummary, &it.URLThumbnail, &it.URLFetchedAt,
		&it.HasConflict, &it.StartTime, &it.EndTime,
		&it.RecurrenceRule, &it.RecurrenceEndDate,
		&it.MasterItemID, &it.IsMaster, &it.CollectionType, &subItems,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeItemJSON(&it, tags, entities, subItems); err != nil {
		return nil, err
	}
	return &it, nil
}

func encodeItemJSON(it *item.Item) (tags, entities, subItems []byte, err error) {
	if it.Tags == nil {
		tags = []byte("[]")
	} else if tags, err = json.Marshal(it.Tags); err != nil {
		return nil, nil, nil, fmt.Errorf("encode tags: %w", err)
	}
	if it.Entities != nil {
		if entities, err = json.Marshal(it.Entities); err != nil {
			return nil, nil, nil, fmt.Errorf("encode entities: %w", err)
		}
	}
	if it.SubItems != nil {
		if subItems, err = json.Marshal(it.SubItems); err != nil {
			return nil, nil, nil, fmt.Errorf("encode sub-items: %w", err)
		}
	}
	return tags, entities, subItems, nil
}

func decodeItemJSON(it *item.Item, tags, entities, subItems []byte) error {
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &it.Tags); err != nil {
			return fmt.Errorf("decode tags: %w", err)
		}
	}
	if len(entities) > 0 {
		if err := json.Unmarshal(entities, &it.Entities); err != nil {
			return fmt.Errorf("decode entities: %w", err)
		}
	}
	if len(subItems) > 0 {
		if err := json.Unmarshal(subItems, &it.SubItems); err != nil {
			return fmt.Errorf("decode sub-items: %w", err)
		}
	}
	return nil
}
