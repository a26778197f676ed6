package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/personal-report/organizer-api/internal/adapters/contracttest"
	"github.com/personal-report/organizer-api/internal/ports/out/docstore"
)

func TestStore_Contract(t *testing.T) {
	t.Parallel()
	contracttest.RunDocStore(t, func(t *testing.T) (docstore.Store, contracttest.CleanupFunc) {
		store, err := New(filepath.Join(t.TempDir(), "organizer.db"))
		if err != nil {
			t.Fatalf("open sqlite store: %v", err)
		}
		return store, func() { _ = store.Close() }
	})
}

// json_patch treats a JSON null as "remove the key": updating a field to nil
// must clear it rather than store a literal null.
func TestStore_UpdateWithNilClearsField(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := New(filepath.Join(t.TempDir(), "organizer.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	id, err := store.Create(ctx, docstore.CollectionBooks, map[string]any{
		"userId":      "user-a",
		"bookName":    "Liberation",
		"description": "first edition",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.UpdateFields(ctx, docstore.CollectionBooks, id, map[string]any{
		"description": nil,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	docs, err := store.Query(ctx, docstore.CollectionBooks, docstore.Filter{Field: "userId", Equals: "user-a"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if _, present := docs[0].Fields["description"]; present {
		t.Fatalf("description still present after nil update: %v", docs[0].Fields["description"])
	}
	if got := docs[0].Fields["bookName"]; got != "Liberation" {
		t.Fatalf("bookName = %v, unrelated field lost", got)
	}
}
