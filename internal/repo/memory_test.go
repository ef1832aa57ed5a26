package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/repo"
)

// compile-time check: MemoryStore must satisfy repo.Store.
var _ repo.Store = (*repo.MemoryStore)(nil)

func TestMemoryStore_PutAllGetAll_SortedCopies(t *testing.T) {
	s := repo.NewMemoryStore()
	ctx := context.Background()

	days := daysFixture()
	reversed := []domain.DayRecord{days[2], days[0], days[1]}
	require.NoError(t, s.PutAll(ctx, "owner-1", reversed))

	got, err := s.GetAll(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{days[0].ID, days[1].ID, days[2].ID}, domain.Itinerary(got).IDs())

	// Mutating a returned record must not leak into the store.
	got[0].Locations = append(got[0].Locations, domain.Location{ID: "x"})
	again, err := s.GetAll(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, again[0].Locations)
}

func TestMemoryStore_FailNext_IsOneShot(t *testing.T) {
	s := repo.NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	s.FailNext(repo.OpPutAll, boom)

	err := s.PutAll(ctx, "owner-1", daysFixture())
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, boom)

	got, err := s.GetAll(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, got, "a failed atomic batch writes nothing")

	require.NoError(t, s.PutAll(ctx, "owner-1", daysFixture()))
	assert.Equal(t, 2, s.Calls(repo.OpPutAll))
}

func TestMemoryStore_NonAtomicPartialWrite(t *testing.T) {
	s := repo.NewMemoryStore()
	s.SetAtomicBatch(false)
	ctx := context.Background()

	s.FailPutAllAfter(1, errors.New("connection reset"))
	err := s.PutAll(ctx, "owner-1", daysFixture())
	require.ErrorIs(t, err, domain.ErrTransport)

	got, err := s.GetAll(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.False(t, s.AtomicBatch())
}

func TestMemoryStore_PutOne_KeepsIdentity(t *testing.T) {
	s := repo.NewMemoryStore()
	ctx := context.Background()
	days := daysFixture()
	require.NoError(t, s.PutAll(ctx, "owner-1", days))

	d := days[0]
	d.DayOfWeek = "Caturday"
	d.Notes = "edited"
	require.NoError(t, s.PutOne(ctx, "owner-1", d))

	got, err := s.GetOne(ctx, "owner-1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Notes)
	assert.Equal(t, days[0].DayOfWeek, got.DayOfWeek)
}

func TestMemoryStore_PutOne_NotFound(t *testing.T) {
	s := repo.NewMemoryStore()

	err := s.PutOne(context.Background(), "owner-1", daysFixture()[0])

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_Snapshots(t *testing.T) {
	s := repo.NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetSnapshot(ctx, "tok")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.PutSnapshot(ctx, "owner-1", "tok", daysFixture()))
	snap, err := s.GetSnapshot(ctx, "tok")
	require.NoError(t, err)
	assert.Len(t, snap.Days, 3)

	err = s.PutSnapshot(ctx, "owner-2", "tok", daysFixture())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMemoryStore_ShareToken(t *testing.T) {
	s := repo.NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetShareToken(ctx, "owner-1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.SetShareToken(ctx, "owner-1", "tok"))
	got, err := s.GetShareToken(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := repo.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetAll(ctx, "owner-1")

	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}
