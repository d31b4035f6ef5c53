package objectstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Export serializes every collection into one portable document: top-level
// keys are collection names, values are arrays of that collection's records.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	dump := make(map[string][]json.RawMessage, len(s.schemas))
	for _, name := range s.Collections() {
		docs, err := s.GetAll(ctx, name)
		if err != nil {
			return nil, err
		}
		if docs == nil {
			docs = []json.RawMessage{}
		}
		dump[name] = docs
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: marshal export: %v", ErrStorage, err)
	}
	return data, nil
}

// Import fully overwrites every collection present in the document:
// clear-then-reload, all inside one transaction so a failure leaves the
// store untouched. Unknown top-level keys are ignored for forward
// compatibility. The document must parse completely before anything is
// touched; the caller maps parse failures to its own malformed-input error.
func (s *Store) Import(ctx context.Context, data []byte) error {
	var dump map[string][]json.RawMessage
	if err := json.Unmarshal(data, &dump); err != nil {
		return fmt.Errorf("parse import document: %w", err)
	}

	type entry struct {
		schema Schema
		key    string
		doc    []byte
	}
	var entries []entry
	toClear := make([]Schema, 0, len(dump))
	for name, docs := range dump {
		schema, ok := s.schemas[name]
		if !ok {
			continue // forward compatibility
		}
		toClear = append(toClear, schema)
		for _, doc := range docs {
			key, encoded, err := s.encode(schema, doc)
			if err != nil {
				return fmt.Errorf("parse import document: %w", err)
			}
			entries = append(entries, entry{schema: schema, key: key, doc: encoded})
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin import: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	for _, schema := range toClear {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q`, schema.Name)); err != nil {
			return fmt.Errorf("%w: clear %s: %v", ErrStorage, schema.Name, err)
		}
	}
	for _, e := range entries {
		query := fmt.Sprintf(`INSERT INTO %q (key, doc) VALUES (?, ?)`, e.schema.Name)
		if _, err := tx.ExecContext(ctx, query, e.key, e.doc); err != nil {
			return fmt.Errorf("%w: load %s/%s: %v", ErrStorage, e.schema.Name, e.key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit import: %v", ErrStorage, err)
	}
	return nil
}
