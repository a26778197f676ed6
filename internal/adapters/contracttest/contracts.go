// Package contracttest holds behavioral test suites shared by every adapter
// implementing the same port. Each adapter's tests call into these with a
// factory, so all backends are held to identical semantics.
package contracttest

import (
	"context"
	"errors"
	"testing"

	"github.com/personal-report/organizer-api/internal/domain"
	"github.com/personal-report/organizer-api/internal/ports/out/docstore"
	"github.com/personal-report/organizer-api/internal/ports/out/sessionstore"
)

type CleanupFunc = func()

type DocStoreFactory func(t *testing.T) (docstore.Store, CleanupFunc)
type SessionStoreFactory func(t *testing.T) (sessionstore.Store, CleanupFunc)

func RunDocStore(t *testing.T, newStore DocStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// Create assigns distinct ids.
	idA, err := store.Create(ctx, docstore.CollectionTargets, map[string]any{
		"userId":    "user-a",
		"groupType": "activist",
		"name":      "Karim",
		"books":     []string{"Book One"},
	})
	if err != nil {
		t.Fatalf("Create a: %v", err)
	}
	idB, err := store.Create(ctx, docstore.CollectionTargets, map[string]any{
		"userId":    "user-a",
		"groupType": "member",
		"name":      "Rahim",
	})
	if err != nil {
		t.Fatalf("Create b: %v", err)
	}
	if idA == "" || idA == idB {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", idA, idB)
	}

	// Another user's document must not leak through the equality filter.
	if _, err := store.Create(ctx, docstore.CollectionTargets, map[string]any{
		"userId": "user-b",
		"name":   "Other",
	}); err != nil {
		t.Fatalf("Create other-user: %v", err)
	}

	docs, err := store.Query(ctx, docstore.CollectionTargets, docstore.Filter{Field: "userId", Equals: "user-a"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	// Creation order is preserved.
	if docs[0].ID != idA || docs[1].ID != idB {
		t.Fatalf("order = [%s %s], want [%s %s]", docs[0].ID, docs[1].ID, idA, idB)
	}
	if got := docs[0].Fields["name"]; got != "Karim" {
		t.Fatalf("name = %v, want Karim", got)
	}

	// Partial update merges fields and leaves the rest alone.
	if err := store.UpdateFields(ctx, docstore.CollectionTargets, idA, map[string]any{
		"groupType": "member",
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	docs, err = store.Query(ctx, docstore.CollectionTargets, docstore.Filter{Field: "userId", Equals: "user-a"})
	if err != nil {
		t.Fatalf("Query after update: %v", err)
	}
	if got := docs[0].Fields["groupType"]; got != "member" {
		t.Fatalf("groupType = %v, want member", got)
	}
	if got := docs[0].Fields["name"]; got != "Karim" {
		t.Fatalf("name after partial update = %v, want Karim", got)
	}

	// Updating or deleting a missing id reports ErrNotFound.
	if err := store.UpdateFields(ctx, docstore.CollectionTargets, "no-such-id", map[string]any{"name": "x"}); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("UpdateFields missing id err=%v, want ErrNotFound", err)
	}
	if err := store.DeleteByID(ctx, docstore.CollectionTargets, "no-such-id"); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("DeleteByID missing id err=%v, want ErrNotFound", err)
	}

	// Delete removes the document from subsequent queries.
	if err := store.DeleteByID(ctx, docstore.CollectionTargets, idA); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	docs, err = store.Query(ctx, docstore.CollectionTargets, docstore.Filter{Field: "userId", Equals: "user-a"})
	if err != nil {
		t.Fatalf("Query after delete: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != idB {
		t.Fatalf("after delete got %d documents (first %s), want only %s", len(docs), docs[0].ID, idB)
	}

	// Collections are isolated namespaces.
	if _, err := store.Create(ctx, docstore.CollectionBooks, map[string]any{
		"userId":  "user-a",
		"section": "history",
		"page":    120,
	}); err != nil {
		t.Fatalf("Create book: %v", err)
	}
	books, err := store.Query(ctx, docstore.CollectionBooks, docstore.Filter{Field: "userId", Equals: "user-a"})
	if err != nil {
		t.Fatalf("Query books: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("got %d books, want 1", len(books))
	}
	targets, err := store.Query(ctx, docstore.CollectionTargets, docstore.Filter{Field: "userId", Equals: "user-a"})
	if err != nil {
		t.Fatalf("Query targets: %v", err)
	}
	if len(targets) != 1 {
		t.Fatalf("book creation leaked into targets: %d documents", len(targets))
	}
}

func RunSessionStore(t *testing.T, newStore SessionStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	userID := domain.UserID("user-a")

	if _, err := store.Load(ctx, userID); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Fatalf("Load missing state err=%v, want ErrNotFound", err)
	}

	st := sessionstore.State{
		UserID:       userID,
		EditingID:    domain.PersonID("p-1"),
		EditingGroup: domain.GroupActivist,
		Draft: &sessionstore.Draft{
			GroupType: domain.GroupActivist,
			Name:      "Karim",
			Books:     []string{"Book One"},
		},
		ExpandedKeys: []string{"activist:p-1"},
	}
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save new state: %v", err)
	}

	got, err := store.Load(ctx, userID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Version != 1 {
		t.Fatalf("version = %d, want 1", got.Version)
	}
	if got.EditingID != "p-1" || got.Draft == nil || got.Draft.Name != "Karim" {
		t.Fatalf("loaded state = %+v", got)
	}
	if len(got.ExpandedKeys) != 1 || got.ExpandedKeys[0] != "activist:p-1" {
		t.Fatalf("expandedKeys = %v", got.ExpandedKeys)
	}

	// Saving with a stale version is refused.
	stale := got
	stale.Version = 0
	if err := store.Save(ctx, stale); !errors.Is(err, sessionstore.ErrVersionConflict) {
		t.Fatalf("stale Save err=%v, want ErrVersionConflict", err)
	}

	// Saving with the current version succeeds and bumps it.
	got.DeletingID = domain.PersonID("p-2")
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("Save current version: %v", err)
	}
	got, err = store.Load(ctx, userID)
	if err != nil {
		t.Fatalf("Load after second save: %v", err)
	}
	if got.Version != 2 || got.DeletingID != "p-2" {
		t.Fatalf("state after second save = %+v", got)
	}

	// A brand-new state with a non-zero version is also a conflict.
	if err := store.Save(ctx, sessionstore.State{UserID: "user-b", Version: 7}); !errors.Is(err, sessionstore.ErrVersionConflict) {
		t.Fatalf("non-zero version for missing state err=%v, want ErrVersionConflict", err)
	}

	if err := store.Delete(ctx, userID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, userID); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Fatalf("Load after delete err=%v, want ErrNotFound", err)
	}
	// Deleting again is a no-op.
	if err := store.Delete(ctx, userID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}
