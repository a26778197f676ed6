// Package bookrepo maps book catalog entries onto the generic document store
// contract.
package bookrepo

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/personal-report/organizer-api/internal/domain"
	"github.com/personal-report/organizer-api/internal/ports/out/bookrepo"
	"github.com/personal-report/organizer-api/internal/ports/out/docstore"
)

// Repo implements bookrepo.Repository on a docstore.Store.
type Repo struct {
	store docstore.Store
}

var _ bookrepo.Repository = (*Repo)(nil)

func NewRepo(store docstore.Store) *Repo {
	return &Repo{store: store}
}

func (r *Repo) Create(ctx context.Context, b bookrepo.Book) (domain.BookID, error) {
	fields := map[string]any{
		"userId":      string(b.UserID),
		"section":     b.Section,
		"bookName":    b.BookName,
		"page":        b.Page,
		"downloadUrl": b.DownloadURL,
		"createdAt":   b.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt":   b.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if b.Description != nil {
		fields["description"] = *b.Description
	}
	id, err := r.store.Create(ctx, docstore.CollectionBooks, fields)
	if err != nil {
		return "", err
	}
	return domain.BookID(id), nil
}

func (r *Repo) ListByUser(ctx context.Context, userID domain.UserID) ([]bookrepo.Book, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionBooks, docstore.Filter{
		Field: "userId", Equals: string(userID),
	})
	if err != nil {
		return nil, err
	}
	out := make([]bookrepo.Book, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeBook(doc))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Section < out[j].Section
	})
	return out, nil
}

func (r *Repo) Update(ctx context.Context, b bookrepo.Book) error {
	fields := map[string]any{
		"section":     b.Section,
		"bookName":    b.BookName,
		"page":        b.Page,
		"downloadUrl": b.DownloadURL,
		"updatedAt":   b.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if b.Description != nil {
		fields["description"] = *b.Description
	} else {
		// Explicit null clears the field on every backend.
		fields["description"] = nil
	}

	err := r.store.UpdateFields(ctx, docstore.CollectionBooks, string(b.ID), fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return bookrepo.ErrNotFound
	}
	return err
}

func (r *Repo) Delete(ctx context.Context, id domain.BookID) error {
	err := r.store.DeleteByID(ctx, docstore.CollectionBooks, string(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return bookrepo.ErrNotFound
	}
	return err
}

func decodeBook(doc docstore.Document) bookrepo.Book {
	b := bookrepo.Book{
		ID:          domain.BookID(doc.ID),
		UserID:      domain.UserID(asString(doc.Fields["userId"])),
		Section:     asString(doc.Fields["section"]),
		BookName:    asString(doc.Fields["bookName"]),
		Page:        asInt(doc.Fields["page"]),
		DownloadURL: asString(doc.Fields["downloadUrl"]),
		CreatedAt:   asTime(doc.Fields["createdAt"]),
		UpdatedAt:   asTime(doc.Fields["updatedAt"]),
	}
	if s, ok := doc.Fields["description"].(string); ok {
		b.Description = &s
	}
	return b
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asInt tolerates both int (fresh in-memory writes) and float64 (anything
// that round-tripped through JSON).
func asInt(v any) int {
	switch vv := v.(type) {
	case int:
		return vv
	case int64:
		return int(vv)
	case float64:
		return int(vv)
	default:
		return 0
	}
}

func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
