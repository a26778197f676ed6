package docstore

import "context"

// Collections used by the application. The store is a flat keyed-document
// database; per-user isolation is an equality filter on the userId field.
const (
	CollectionTargets = "targets"
	CollectionBooks   = "organizationBooks"
)

// Document is one stored record: an opaque store-assigned id plus schemaless
// fields.
type Document struct {
	ID     string
	Fields map[string]any
}

// Filter is a single-field equality filter, the only query shape the
// collaborating store supports.
type Filter struct {
	Field  string
	Equals any
}

// Store is the external document-database contract. Implementations are
// adapters over a real persistence engine; the core only depends on this
// surface.
//
// Query returns documents in creation order so the grouped view can preserve
// fetch order within each group.
type Store interface {
	// Create inserts a document and returns the generated id.
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Query returns all documents in collection whose filter field equals the
	// filter value.
	Query(ctx context.Context, collection string, filter Filter) ([]Document, error)

	// UpdateFields merges the given partial fields into an existing document.
	// Returns ErrNotFound when the id is absent.
	UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error

	// DeleteByID removes a document. Returns ErrNotFound when the id is
	// absent; callers decide whether that is an error.
	DeleteByID(ctx context.Context, collection, id string) error
}
