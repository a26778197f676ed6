package docstore

import (
	"context"
	"os"
	"testing"

	"github.com/personal-report/organizer-api/internal/adapters/contracttest"
	"github.com/personal-report/organizer-api/internal/adapters/postgres"
	"github.com/personal-report/organizer-api/internal/ports/out/docstore"
)

// Runs only against a real database: set TEST_DATABASE_URL to a Postgres DSN
// the test may truncate.
func TestStore_Contract(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	store := NewStore(pool)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	contracttest.RunDocStore(t, func(t *testing.T) (docstore.Store, contracttest.CleanupFunc) {
		if _, err := pool.Exec(ctx, `TRUNCATE documents`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return store, nil
	})
}
