package personrepo

import (
	"context"
	"time"

	"github.com/personal-report/organizer-api/internal/domain"
)

// Person is the persistence shape of a target person record.
//
// GroupType is carried as-is from the store: documents may hold tags outside
// the known category set, and the grouping layer is responsible for filtering
// them.
type Person struct {
	ID     domain.PersonID
	UserID domain.UserID

	GroupType  domain.GroupType
	Name       string
	Address    string
	Phone      string
	Books      []string
	TargetDate string

	CreatedAt time.Time
}

// Patch is a partial in-place update. Nil fields are left untouched.
// GroupType may change: a category move within the same document is a field
// update, not a physical relocation.
type Patch struct {
	GroupType  *domain.GroupType
	Name       *string
	Address    *string
	Phone      *string
	Books      *[]string
	TargetDate *string
}

// Repository provides access to persisted target persons.
//
// ListByUser returns records in creation order; the grouped view preserves
// that order within each group. Store failures propagate as the docstore
// Read/Write error types and are never retried here.
type Repository interface {
	Create(ctx context.Context, p Person) (domain.PersonID, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]Person, error)

	// Update applies a partial in-place update. Returns ErrNotFound when the
	// id is absent.
	Update(ctx context.Context, id domain.PersonID, patch Patch) error

	// Delete removes a record. An id that is already absent is logged and
	// skipped, not an error: delete is idempotent in intent.
	Delete(ctx context.Context, id domain.PersonID) error
}
