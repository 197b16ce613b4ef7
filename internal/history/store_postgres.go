package history

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geotagx/gtx-builder/internal/platform/database"
)

const dbTimeout = 5 * time.Second

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed history store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the history tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	return database.Migrate(ctx, s.pool, sub)
}

func (s *PostgresStore) Record(ctx context.Context, r Record) error {
	if err := validate(r); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	builtAt := r.BuiltAt
	if builtAt.IsZero() {
		builtAt = time.Now()
	}
	pages := r.Pages
	if pages == nil {
		pages = []string{}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO build_history (project, slug, outcome, digest, pages, duration_ms, error, built_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.Project,
		r.Slug,
		string(r.Outcome),
		nullIfEmpty(r.Digest),
		pages,
		r.Duration.Milliseconds(),
		nullIfEmpty(r.Error),
		builtAt,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, slug string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, project, slug, outcome, COALESCE(digest, ''), pages, duration_ms, COALESCE(error, ''), built_at
		 FROM build_history
		 WHERE slug = $1
		 ORDER BY built_at DESC, id DESC
		 LIMIT $2`,
		slug,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query build history: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		var outcome string
		var durationMS int64
		err := row.Scan(&r.ID, &r.Project, &r.Slug, &outcome, &r.Digest, &r.Pages, &durationMS, &r.Error, &r.BuiltAt)
		r.Outcome = Outcome(outcome)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan build history: %w", err)
	}
	return records, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
