// Package testutil provides shared helpers for Postgres integration tests.
// Helpers in this package skip automatically when TEST_DATABASE_URL is not
// set, so unit tests run without a database.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/jayt-piggie/my-trip-planner/internal/repo"
)

// NewPool opens a *pgxpool.Pool on TEST_DATABASE_URL. The pool is closed
// when the test and its subtests finish.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := openPool(requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewTxStore returns a Postgres-backed repo.Store running inside a
// transaction that is rolled back when the test finishes, so every test
// sees an empty itinerary table without cleanup SQL. PutAll still runs in
// its own savepoint. Migrations must already be applied, usually by the package TestMain.
func NewTxStore(t *testing.T) repo.Store {
	t.Helper()
	ctx := context.Background()

	tx, err := NewPool(t).Begin(ctx)
	if err != nil {
		t.Fatalf("testutil.NewTxStore: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(ctx) })
	return repo.NewPostgresStore(tx)
}

// NewSQLDB returns a *sql.DB over a pool on TEST_DATABASE_URL, for goose.
// Both are closed when the test finishes.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	pool := NewPool(t)
	db := stdlib.OpenDBFromPool(pool)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// MustOpenSQLDB opens a *sql.DB for dsn and panics on any error.
// Use this in TestMain functions where no *testing.T is available.
// The returned close function releases the database and its pool.
func MustOpenSQLDB(dsn string) (*sql.DB, func()) {
	pool, err := openPool(dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: " + err.Error())
	}
	db := stdlib.OpenDBFromPool(pool)
	return db, func() {
		_ = db.Close()
		pool.Close()
	}
}

func openPool(dsn string) (*pgxpool.Pool, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// requireDSN returns TEST_DATABASE_URL, skipping the test if it is not set.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
