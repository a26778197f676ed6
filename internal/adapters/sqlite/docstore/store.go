// Package docstore provides a SQLite-backed implementation of the
// docstore.Store contract, for single-binary deployments.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	"github.com/personal-report/organizer-api/internal/ports/out/docstore"
)

// Store implements docstore.Store on a single documents table with a JSON
// fields column.
type Store struct {
	db *sql.DB
}

var _ docstore.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	fields     TEXT NOT NULL,
	UNIQUE (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);
`

// New opens (creating if needed) the database at path and runs migrations.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", &docstore.WriteError{Op: "create", Collection: collection, Err: err}
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields) VALUES (?, ?, ?)`,
		collection, id, string(payload),
	)
	if err != nil {
		return "", &docstore.WriteError{Op: "create", Collection: collection, Err: err}
	}
	return id, nil
}

func (s *Store) Query(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields
		 FROM documents
		 WHERE collection = ? AND json_extract(fields, '$.' || ?) = ?
		 ORDER BY seq`,
		collection, filter.Field, filter.Equals,
	)
	if err != nil {
		return nil, &docstore.ReadError{Collection: collection, Err: err}
	}
	defer rows.Close()

	out := make([]docstore.Document, 0)
	for rows.Next() {
		var (
			id      string
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, &docstore.ReadError{Collection: collection, Err: err}
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(payload), &fields); err != nil {
			return nil, &docstore.ReadError{Collection: collection, Err: err}
		}
		out = append(out, docstore.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, &docstore.ReadError{Collection: collection, Err: err}
	}
	return out, nil
}

func (s *Store) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return &docstore.WriteError{Op: "update", Collection: collection, Err: err}
	}
	// json_patch applies an RFC 7386 merge: scalars and arrays replace, null
	// removes the key. Removing equals clearing an optional field here.
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET fields = json_patch(fields, ?) WHERE collection = ? AND id = ?`,
		string(payload), collection, id,
	)
	if err != nil {
		return &docstore.WriteError{Op: "update", Collection: collection, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &docstore.WriteError{Op: "update", Collection: collection, Err: err}
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return &docstore.WriteError{Op: "delete", Collection: collection, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &docstore.WriteError{Op: "delete", Collection: collection, Err: err}
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}
