// Package docstore provides a Postgres implementation of the docstore.Store
// contract, one JSONB documents table per database.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/personal-report/organizer-api/internal/ports/out/docstore"
)

// Store implements docstore.Store over pgx.
type Store struct {
	pool *pgxpool.Pool
}

var _ docstore.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the documents table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			seq        BIGSERIAL PRIMARY KEY,
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			fields     JSONB NOT NULL,
			UNIQUE (collection, id)
		);
		CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);
	`)
	return err
}

func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", &docstore.WriteError{Op: "create", Collection: collection, Err: err}
	}
	id := uuid.NewString()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3::jsonb)`,
		collection, id, string(payload),
	)
	if err != nil {
		return "", &docstore.WriteError{Op: "create", Collection: collection, Err: err}
	}
	return id, nil
}

func (s *Store) Query(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, fields
		 FROM documents
		 WHERE collection = $1 AND fields->>$2 = $3
		 ORDER BY seq`,
		collection, filter.Field, fmt.Sprint(filter.Equals),
	)
	if err != nil {
		return nil, &docstore.ReadError{Collection: collection, Err: err}
	}
	defer rows.Close()

	out := make([]docstore.Document, 0)
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, &docstore.ReadError{Collection: collection, Err: err}
		}
		var fields map[string]any
		if err := json.Unmarshal(payload, &fields); err != nil {
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
	ct, err := s.pool.Exec(ctx,
		`UPDATE documents SET fields = fields || $3::jsonb WHERE collection = $1 AND id = $2`,
		collection, id, string(payload),
	)
	if err != nil {
		return &docstore.WriteError{Op: "update", Collection: collection, Err: err}
	}
	if ct.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, collection, id string) error {
	ct, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return &docstore.WriteError{Op: "delete", Collection: collection, Err: err}
	}
	if ct.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}
