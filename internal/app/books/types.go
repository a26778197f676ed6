package books

import "github.com/personal-report/organizer-api/internal/domain"

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

type AddBookInput struct {
	Section     string
	BookName    string
	Page        int
	DownloadURL string
	Description string
}

// UpdateBookInput patches a book. Description may be specified as null to
// clear it; the other fields cannot be null.
type UpdateBookInput struct {
	Section     Optional[string]
	BookName    Optional[string]
	Page        Optional[int]
	DownloadURL Optional[string]
	Description Optional[string]
}

// AddOutcome distinguishes a persisted add from a silently skipped one.
type AddOutcome string

const (
	// AddSaved means the book was written to the catalog.
	AddSaved AddOutcome = "saved"
	// AddSkipped means the truthy guard failed; nothing was written and no
	// error is surfaced.
	AddSkipped AddOutcome = "skipped"
)

// AddResult is the outcome of an add plus the id of the new book when saved.
type AddResult struct {
	Outcome AddOutcome
	ID      domain.BookID
}
