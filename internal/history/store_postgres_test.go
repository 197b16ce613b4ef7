package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/geotagx/gtx-builder/internal/history"
	"github.com/geotagx/gtx-builder/internal/platform/database"
)

// startPostgres starts a disposable PostgreSQL server and returns a pool
// connected to it.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("gtx"),
		postgres.WithUsername("gtx"),
		postgres.WithPassword("gtx"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("starting postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminating postgres: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("ConnectionString() error = %v", err)
	}
	db, err := database.New(ctx, url, 4, 0)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(db.Close)
	return db.Pool
}

func newPostgresStore(t *testing.T) *history.PostgresStore {
	t.Helper()
	ctx := context.Background()

	store, err := history.NewPostgresStore(startPostgres(t))
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	// Migrations are only applied once.
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	return store
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testStore(t, newPostgresStore(t))
}

func TestPostgresStore_ConcurrentMigrate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	pool := startPostgres(t)

	var g errgroup.Group
	for range 3 {
		g.Go(func() error {
			store, err := history.NewPostgresStore(pool)
			if err != nil {
				return err
			}
			return store.Migrate(t.Context())
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Migrate() error = %v", err)
	}

	var version int64
	if err := pool.QueryRow(t.Context(), "SELECT MAX(version_id) FROM goose_db_version").Scan(&version); err != nil {
		t.Fatalf("reading goose version: %v", err)
	}
	if version != 1 {
		t.Errorf("goose version = %d, want 1", version)
	}

	store, _ := history.NewPostgresStore(pool)
	if err := store.Record(t.Context(), history.Record{Project: "/p", Slug: "p", Outcome: history.Built}); err != nil {
		t.Errorf("Record() after migration error = %v", err)
	}
}

func TestNewPostgresStore_NilPool(t *testing.T) {
	if _, err := history.NewPostgresStore(nil); err == nil {
		t.Error("NewPostgresStore(nil) should fail")
	}
}
