// Package objectstore is a small embedded collection store over sqlite.
// Records are JSON documents keyed by a declared primary key field, with
// optional secondary indices over json_extract expressions. Collections are
// declared once at Open and never altered at runtime.
//
// Every operation is atomic with respect to itself; there is no
// multi-operation transaction surface. Callers that need several mutations
// to appear atomic must treat partial failure as a recoverable state.
package objectstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"
)

// Index declares a secondary index over one top-level document field.
type Index struct {
	Name   string
	Field  string
	Unique bool
}

// Schema declares one collection: its name, the document field holding the
// primary key, and its secondary indices.
type Schema struct {
	Name    string
	Key     string
	Indices []Index
}

// Order names a top-level document field to sort a Query by.
type Order struct {
	Field string
	Desc  bool
}

type Store struct {
	db      *sql.DB
	schemas map[string]Schema
	log     *slog.Logger
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open opens (creating if needed) the store at path and ensures every
// declared collection and index exists. Use ":memory:" for tests.
func Open(path string, schemas []Schema, log *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrStorage, err)
	}
	// single connection keeps writes serialized, matching the cooperative
	// single-writer model the store is specified for
	db.SetMaxOpenConns(1)

	s := &Store{
		db:      db,
		schemas: make(map[string]Schema, len(schemas)),
		log:     log.With(slog.String("component", "objectstore")),
	}
	for _, schema := range schemas {
		if !identRe.MatchString(schema.Name) || !identRe.MatchString(schema.Key) {
			db.Close()
			return nil, fmt.Errorf("%w: bad schema identifier %q", ErrStorage, schema.Name)
		}
		s.schemas[schema.Name] = schema
	}
	if err := s.initCollections(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initCollections() error {
	for _, schema := range s.schemas {
		ddl := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %q (key TEXT PRIMARY KEY, doc TEXT NOT NULL)`,
			schema.Name,
		)
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("%w: create collection %s: %v", ErrStorage, schema.Name, err)
		}
		for _, idx := range schema.Indices {
			if !identRe.MatchString(idx.Name) || !identRe.MatchString(idx.Field) {
				return fmt.Errorf("%w: bad index identifier on %s", ErrStorage, schema.Name)
			}
			unique := ""
			if idx.Unique {
				unique = "UNIQUE "
			}
			ddl := fmt.Sprintf(
				`CREATE %sINDEX IF NOT EXISTS %q ON %q (json_extract(doc, '$.%s'))`,
				unique, schema.Name+"_"+idx.Name, schema.Name, idx.Field,
			)
			if _, err := s.db.Exec(ddl); err != nil {
				return fmt.Errorf("%w: create index %s on %s: %v", ErrStorage, idx.Name, schema.Name, err)
			}
		}
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Collections returns the declared collection names, sorted.
func (s *Store) Collections() []string {
	names := make([]string, 0, len(s.schemas))
	for name := range s.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) schema(collection string) (Schema, error) {
	schema, ok := s.schemas[collection]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return schema, nil
}

func (s *Store) encode(schema Schema, record any) (key string, doc []byte, err error) {
	doc, err = json.Marshal(record)
	if err != nil {
		return "", nil, fmt.Errorf("%w: marshal record: %v", ErrStorage, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return "", nil, fmt.Errorf("%w: record is not an object: %v", ErrStorage, err)
	}
	raw, ok := fields[schema.Key]
	if !ok {
		return "", nil, fmt.Errorf("%w: record lacks key field %q", ErrStorage, schema.Key)
	}
	if err := json.Unmarshal(raw, &key); err != nil || key == "" {
		return "", nil, fmt.Errorf("%w: key field %q must be a non-empty string", ErrStorage, schema.Key)
	}
	return key, doc, nil
}

// Add inserts a new record, failing with ErrDuplicateKey when the key (or a
// unique index value) is already taken.
func (s *Store) Add(ctx context.Context, collection string, record any) error {
	schema, err := s.schema(collection)
	if err != nil {
		return err
	}
	key, doc, err := s.encode(schema, record)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %q (key, doc) VALUES (?, ?)`, schema.Name)
	if _, err := s.db.ExecContext(ctx, query, key, doc); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateKey, collection, key)
		}
		return fmt.Errorf("%w: add %s/%s: %v", ErrStorage, collection, key, err)
	}
	return nil
}

// Put upserts a record by its key.
func (s *Store) Put(ctx context.Context, collection string, record any) error {
	schema, err := s.schema(collection)
	if err != nil {
		return err
	}
	key, doc, err := s.encode(schema, record)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		`INSERT INTO %q (key, doc) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET doc = excluded.doc`, schema.Name)
	if _, err := s.db.ExecContext(ctx, query, key, doc); err != nil {
		return fmt.Errorf("%w: put %s/%s: %v", ErrStorage, collection, key, err)
	}
	return nil
}

// GetByID fetches one record by primary key, ErrNoRecord when absent.
func (s *Store) GetByID(ctx context.Context, collection, key string) (json.RawMessage, error) {
	schema, err := s.schema(collection)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT doc FROM %q WHERE key = ?`, schema.Name)
	var doc []byte
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s/%s", ErrNoRecord, collection, key)
		}
		return nil, fmt.Errorf("%w: get %s/%s: %v", ErrStorage, collection, key, err)
	}
	return doc, nil
}

// GetAll returns every record in key order.
func (s *Store) GetAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	schema, err := s.schema(collection)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT doc FROM %q ORDER BY key`, schema.Name)
	return s.selectDocs(ctx, collection, query)
}

// GetByIndex returns every record whose indexed field equals value.
func (s *Store) GetByIndex(ctx context.Context, collection, indexName string, value any) ([]json.RawMessage, error) {
	schema, err := s.schema(collection)
	if err != nil {
		return nil, err
	}
	var field string
	for _, idx := range schema.Indices {
		if idx.Name == indexName {
			field = idx.Field
			break
		}
	}
	if field == "" {
		return nil, fmt.Errorf("%w: no index %q on %s", ErrStorage, indexName, collection)
	}
	query := fmt.Sprintf(
		`SELECT doc FROM %q WHERE json_extract(doc, '$.%s') = ? ORDER BY key`,
		schema.Name, field,
	)
	return s.selectDocs(ctx, collection, query, value)
}

// Query performs a full forward scan, applies the optional predicate and
// optionally sorts on a named top-level field.
func (s *Store) Query(ctx context.Context, collection string, pred func(json.RawMessage) bool, order *Order) ([]json.RawMessage, error) {
	schema, err := s.schema(collection)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT doc FROM %q`, schema.Name)
	if order != nil {
		if !identRe.MatchString(order.Field) {
			return nil, fmt.Errorf("%w: bad order field %q", ErrStorage, order.Field)
		}
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(` ORDER BY json_extract(doc, '$.%s') %s`, order.Field, dir)
	} else {
		query += ` ORDER BY key`
	}
	docs, err := s.selectDocs(ctx, collection, query)
	if err != nil {
		return nil, err
	}
	if pred == nil {
		return docs, nil
	}
	out := docs[:0]
	for _, doc := range docs {
		if pred(doc) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *Store) selectDocs(ctx context.Context, collection, query string, args ...any) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", ErrStorage, collection, err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrStorage, collection, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", ErrStorage, collection, err)
	}
	return docs, nil
}

// Delete removes a record by key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, collection, key string) error {
	schema, err := s.schema(collection)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %q WHERE key = ?`, schema.Name)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("%w: delete %s/%s: %v", ErrStorage, collection, key, err)
	}
	return nil
}

// Clear removes every record in the collection.
func (s *Store) Clear(ctx context.Context, collection string) error {
	schema, err := s.schema(collection)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %q`, schema.Name)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: clear %s: %v", ErrStorage, collection, err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	schema, err := s.schema(collection)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %q`, schema.Name)
	var n int
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count %s: %v", ErrStorage, collection, err)
	}
	return n, nil
}
