// Package repo contains all persistence logic for the trip planner.
// Store is the adapter the core depends on; it has a Postgres implementation
// for production and an in-memory implementation for development and tests.
// No business logic lives here, only storage and type mapping.
package repo

import (
	"context"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

// Store is the persistence adapter for owner itineraries and share snapshots.
// Every method may fail with an error wrapping domain.ErrTransport when the
// backing store is unreachable or rejects the operation.
type Store interface {
	// GetAll returns every day record of the owner ordered by date.
	// An owner that has never been seeded yields an empty slice.
	GetAll(ctx context.Context, owner string) ([]domain.DayRecord, error)

	// PutAll writes all records for the owner as one all-or-nothing batch,
	// inserting missing records and overwriting existing ones.
	PutAll(ctx context.Context, owner string, records []domain.DayRecord) error

	// GetOne returns a single day record.
	// Returns domain.ErrNotFound if the owner has no day with that id.
	GetOne(ctx context.Context, owner, id string) (domain.DayRecord, error)

	// PutOne overwrites an existing day record.
	// Returns domain.ErrNotFound if the owner has no day with that id.
	PutOne(ctx context.Context, owner string, record domain.DayRecord) error

	// GetSnapshot returns the share snapshot stored under token.
	// Returns domain.ErrNotFound if the token is unknown.
	GetSnapshot(ctx context.Context, token string) (domain.Snapshot, error)

	// PutSnapshot creates or overwrites, in place, the snapshot under token.
	PutSnapshot(ctx context.Context, owner, token string, days []domain.DayRecord) error

	// GetShareToken returns the owner's share token.
	// Returns domain.ErrNotFound if the owner has never shared.
	GetShareToken(ctx context.Context, owner string) (string, error)

	// SetShareToken records token as the owner's share token.
	SetShareToken(ctx context.Context, owner, token string) error

	// AtomicBatch reports whether PutAll is guaranteed all-or-nothing.
	AtomicBatch() bool
}
