// Package personrepo maps target person records onto the generic document
// store contract.
package personrepo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/personal-report/organizer-api/internal/domain"
	"github.com/personal-report/organizer-api/internal/ports/out/docstore"
	"github.com/personal-report/organizer-api/internal/ports/out/personrepo"
)

// Repo implements personrepo.Repository on a docstore.Store.
type Repo struct {
	store docstore.Store
}

var _ personrepo.Repository = (*Repo)(nil)

func NewRepo(store docstore.Store) *Repo {
	return &Repo{store: store}
}

func (r *Repo) Create(ctx context.Context, p personrepo.Person) (domain.PersonID, error) {
	books := p.Books
	if books == nil {
		books = []string{}
	}
	id, err := r.store.Create(ctx, docstore.CollectionTargets, map[string]any{
		"userId":     string(p.UserID),
		"groupType":  string(p.GroupType),
		"name":       p.Name,
		"address":    p.Address,
		"phone":      p.Phone,
		"books":      books,
		"targetDate": p.TargetDate,
		"createdAt":  p.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", err
	}
	return domain.PersonID(id), nil
}

func (r *Repo) ListByUser(ctx context.Context, userID domain.UserID) ([]personrepo.Person, error) {
	docs, err := r.store.Query(ctx, docstore.CollectionTargets, docstore.Filter{
		Field: "userId", Equals: string(userID),
	})
	if err != nil {
		return nil, err
	}
	out := make([]personrepo.Person, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodePerson(doc))
	}
	return out, nil
}

func (r *Repo) Update(ctx context.Context, id domain.PersonID, patch personrepo.Patch) error {
	fields := make(map[string]any)
	if patch.GroupType != nil {
		fields["groupType"] = string(*patch.GroupType)
	}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Address != nil {
		fields["address"] = *patch.Address
	}
	if patch.Phone != nil {
		fields["phone"] = *patch.Phone
	}
	if patch.Books != nil {
		books := *patch.Books
		if books == nil {
			books = []string{}
		}
		fields["books"] = books
	}
	if patch.TargetDate != nil {
		fields["targetDate"] = *patch.TargetDate
	}
	if len(fields) == 0 {
		return nil
	}

	err := r.store.UpdateFields(ctx, docstore.CollectionTargets, string(id), fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return personrepo.ErrNotFound
	}
	return err
}

func (r *Repo) Delete(ctx context.Context, id domain.PersonID) error {
	err := r.store.DeleteByID(ctx, docstore.CollectionTargets, string(id))
	if errors.Is(err, docstore.ErrNotFound) {
		// Deletes are idempotent in intent; an already-gone record is fine.
		slog.Warn("target already absent on delete", "personId", string(id))
		return nil
	}
	return err
}

func decodePerson(doc docstore.Document) personrepo.Person {
	return personrepo.Person{
		ID:         domain.PersonID(doc.ID),
		UserID:     domain.UserID(asString(doc.Fields["userId"])),
		GroupType:  domain.GroupType(asString(doc.Fields["groupType"])),
		Name:       asString(doc.Fields["name"]),
		Address:    asString(doc.Fields["address"]),
		Phone:      asString(doc.Fields["phone"]),
		Books:      asStringSlice(doc.Fields["books"]),
		TargetDate: asString(doc.Fields["targetDate"]),
		CreatedAt:  asTime(doc.Fields["createdAt"]),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asStringSlice tolerates both []string (fresh in-memory writes) and []any
// (anything that round-tripped through JSON).
func asStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return append([]string(nil), vv...)
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
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
