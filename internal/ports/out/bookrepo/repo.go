package bookrepo

import (
	"context"
	"time"

	"github.com/personal-report/organizer-api/internal/domain"
)

// Book is the persistence shape of a book catalog entry.
type Book struct {
	ID     domain.BookID
	UserID domain.UserID

	Section     string
	BookName    string
	Page        int
	DownloadURL string
	// Description is optional; nil means unset.
	Description *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to the persisted book catalog.
//
// ListByUser returns books sorted by Section ascending (lexicographic) to
// keep listings deterministic. Store failures propagate as the docstore
// Read/Write error types and are never retried here.
type Repository interface {
	Create(ctx context.Context, b Book) (domain.BookID, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]Book, error)

	// Update rewrites the mutable fields of an existing book. Returns
	// ErrNotFound when the id is absent.
	Update(ctx context.Context, b Book) error

	// Delete removes a book. Unlike the person repository, an absent id is an
	// ErrNotFound error here.
	Delete(ctx context.Context, id domain.BookID) error
}
