// Package books implements the per-user book catalog.
package books

import (
	"context"

	"github.com/personal-report/organizer-api/internal/domain"
	"github.com/personal-report/organizer-api/internal/ports/out/bookrepo"
	"github.com/personal-report/organizer-api/internal/ports/out/clock"
)

type Service struct {
	repo bookrepo.Repository
	clk  clock.Clock
}

func NewService(repo bookrepo.Repository, clk clock.Clock) *Service {
	return &Service{repo: repo, clk: clk}
}

// Add catalogs a new book. An incomplete entry (empty section, name or URL,
// or a missing page number) is silently skipped rather than rejected.
func (s *Service) Add(ctx context.Context, userID domain.UserID, in AddBookInput) (AddResult, error) {
	if userID == "" {
		return AddResult{}, errNotAuthenticated()
	}

	section := domain.NormalizeText(in.Section)
	bookName := domain.NormalizeText(in.BookName)
	downloadURL := domain.NormalizeText(in.DownloadURL)
	if section == "" || bookName == "" || downloadURL == "" || in.Page <= 0 {
		return AddResult{Outcome: AddSkipped}, nil
	}

	now := s.clk.Now().UTC()
	b := bookrepo.Book{
		UserID:      userID,
		Section:     section,
		BookName:    bookName,
		Page:        in.Page,
		DownloadURL: downloadURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if desc := domain.NormalizeText(in.Description); desc != "" {
		b.Description = &desc
	}

	id, err := s.repo.Create(ctx, b)
	if err != nil {
		return AddResult{}, asAppError(err)
	}
	return AddResult{Outcome: AddSaved, ID: id}, nil
}

// List returns the caller's catalog sorted by section, optionally narrowed to
// one section. An unauthenticated caller gets an empty list.
func (s *Service) List(ctx context.Context, userID domain.UserID, section string) ([]domain.Book, error) {
	if userID == "" {
		return []domain.Book{}, nil
	}
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, asAppError(err)
	}
	section = domain.NormalizeText(section)
	out := make([]domain.Book, 0, len(records))
	for _, b := range records {
		if section != "" && b.Section != section {
			continue
		}
		out = append(out, toDomainBook(b))
	}
	return out, nil
}

// Update patches a book the caller owns. Description may be cleared to null;
// every other specified field must carry a usable value.
func (s *Service) Update(ctx context.Context, userID domain.UserID, id domain.BookID, in UpdateBookInput) (domain.Book, error) {
	if userID == "" {
		return domain.Book{}, errNotAuthenticated()
	}

	current, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return domain.Book{}, err
	}

	if in.Section.IsSpecified() {
		v := domain.NormalizeText(in.Section.Value())
		if in.Section.IsNull() || v == "" {
			return domain.Book{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid section", Details: map[string]any{"section": "must be non-empty"}}
		}
		current.Section = v
	}
	if in.BookName.IsSpecified() {
		v := domain.NormalizeText(in.BookName.Value())
		if in.BookName.IsNull() || v == "" {
			return domain.Book{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid book name", Details: map[string]any{"bookName": "must be non-empty"}}
		}
		current.BookName = v
	}
	if in.Page.IsSpecified() {
		if in.Page.IsNull() || in.Page.Value() <= 0 {
			return domain.Book{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid page", Details: map[string]any{"page": "must be a positive number"}}
		}
		current.Page = in.Page.Value()
	}
	if in.DownloadURL.IsSpecified() {
		v := domain.NormalizeText(in.DownloadURL.Value())
		if in.DownloadURL.IsNull() || v == "" {
			return domain.Book{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid download URL", Details: map[string]any{"downloadUrl": "must be non-empty"}}
		}
		current.DownloadURL = v
	}
	if in.Description.IsSpecified() {
		if v := domain.NormalizeText(in.Description.Value()); !in.Description.IsNull() && v != "" {
			current.Description = &v
		} else {
			current.Description = nil
		}
	}

	current.UpdatedAt = s.clk.Now().UTC()
	if err := s.repo.Update(ctx, current); err != nil {
		return domain.Book{}, asAppError(err)
	}
	return toDomainBook(current), nil
}

// Delete removes a book the caller owns.
func (s *Service) Delete(ctx context.Context, userID domain.UserID, id domain.BookID) error {
	if userID == "" {
		return errNotAuthenticated()
	}
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return asAppError(err)
	}
	return nil
}

// findOwned resolves id within the caller's own catalog. A book that exists
// under another user is indistinguishable from one that does not exist.
func (s *Service) findOwned(ctx context.Context, userID domain.UserID, id domain.BookID) (bookrepo.Book, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return bookrepo.Book{}, asAppError(err)
	}
	for _, b := range records {
		if b.ID == id {
			return b, nil
		}
	}
	return bookrepo.Book{}, errBookNotFound()
}

func toDomainBook(b bookrepo.Book) domain.Book {
	out := domain.Book{
		ID:          b.ID,
		UserID:      b.UserID,
		Section:     b.Section,
		BookName:    b.BookName,
		Page:        b.Page,
		DownloadURL: b.DownloadURL,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.Description != nil {
		d := *b.Description
		out.Description = &d
	}
	return out
}
