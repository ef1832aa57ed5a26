package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/repo"
)

func TestBootstrap_Owner_SeedsEmptyStore(t *testing.T) {
	store := repo.NewMemoryStore()
	s := openOwner(t, newEngine(t, store, nil))

	seed := domain.Itinerary(seedDays(t))
	assert.Equal(t, seed, s.Status().Days)
	assert.Equal(t, seed[0].ID, s.Status().OpenDayID)
	assert.Equal(t, 1, store.Calls(repo.OpPutAll))

	stored, err := store.GetAll(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, seed, domain.Itinerary(stored))
}

func TestBootstrap_Owner_LoadsExistingWithoutWriting(t *testing.T) {
	store := repo.NewMemoryStore()
	existing := seedDays(t)
	existing[1].Notes = "kept"
	require.NoError(t, store.PutAll(context.Background(), owner, existing))

	s := openOwner(t, newEngine(t, store, nil))

	assert.Equal(t, domain.Itinerary(existing), s.Status().Days)
	assert.Equal(t, 1, store.Calls(repo.OpPutAll), "only the fixture write")
}

func TestBootstrap_Owner_PartialSeedFailure(t *testing.T) {
	store := repo.NewMemoryStore()
	e := newEngine(t, store, nil)
	ctx := context.Background()

	store.FailNext(repo.OpPutAll, errors.New("write rejected mid-batch"))
	s, err := e.Bootstrap(ctx, domain.Owner{Key: owner})
	require.ErrorIs(t, err, domain.ErrPartialSeed)
	assert.Nil(t, s)

	stored, err := store.GetAll(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, stored, "nothing of the seed is visible")

	// a fresh bootstrap attempt succeeds
	s = openOwner(t, e)
	assert.Len(t, s.Status().Days, 3)
}

func TestBootstrap_Owner_NonAtomicPartialSeedIsCompletedOnRetry(t *testing.T) {
	store := repo.NewMemoryStore()
	store.SetAtomicBatch(false)
	e := newEngine(t, store, nil)
	ctx := context.Background()

	store.FailPutAllAfter(1, errors.New("connection reset"))
	_, err := e.Bootstrap(ctx, domain.Owner{Key: owner})
	require.ErrorIs(t, err, domain.ErrPartialSeed)

	stored, err := store.GetAll(ctx, owner)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	s := openOwner(t, e)
	assert.Equal(t, domain.Itinerary(seedDays(t)), s.Status().Days)

	stored, err = store.GetAll(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestBootstrap_Owner_AtomicStoreKeepsShorterDaySet(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.PutAll(ctx, owner, seedDays(t)[:2]))

	s := openOwner(t, newEngine(t, store, nil))

	assert.Equal(t, []string{"2025-07-15", "2025-07-16"}, s.Status().Days.IDs())
	assert.Equal(t, 1, store.Calls(repo.OpPutAll))
	stored, err := store.GetAll(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestBootstrap_Owner_ForeignDaySetWins(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()
	other := seedDays(t)[:1]
	other[0].ID = "2024-01-01"
	require.NoError(t, store.PutAll(ctx, owner, other))

	s := openOwner(t, newEngine(t, store, nil))

	assert.Equal(t, []string{"2024-01-01"}, s.Status().Days.IDs())
	assert.Equal(t, 1, store.Calls(repo.OpPutAll))
}

func TestBootstrap_Owner_LoadFailure(t *testing.T) {
	store := repo.NewMemoryStore()
	store.FailNext(repo.OpGetAll, errors.New("timeout"))

	_, err := newEngine(t, store, nil).Bootstrap(context.Background(), domain.Owner{Key: owner})
	require.ErrorIs(t, err, domain.ErrTransport)
	assert.NotErrorIs(t, err, domain.ErrPartialSeed)
	assert.Zero(t, store.Calls(repo.OpPutAll))
}

func TestBootstrap_Owner_PicksUpExistingShareToken(t *testing.T) {
	store := repo.NewMemoryStore()
	require.NoError(t, store.SetShareToken(context.Background(), owner, "tok-old"))

	s := openOwner(t, newEngine(t, store, nil))
	assert.Equal(t, "tok-old", s.Status().ShareToken)
}

func TestBootstrap_Viewer_UnknownToken(t *testing.T) {
	_, err := newEngine(t, repo.NewMemoryStore(), nil).Bootstrap(context.Background(), domain.Viewer{Token: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBootstrap_Viewer_ReadsRedactedSnapshot(t *testing.T) {
	store := repo.NewMemoryStore()
	e := newEngine(t, store, nil)
	ctx := context.Background()

	owned := openOwner(t, e)
	days := owned.Status().Days
	_, err := owned.Publish(ctx, days[1].ID, louvre())
	require.NoError(t, err)
	token, err := owned.Share(ctx)
	require.NoError(t, err)

	// unpublished edits made after sharing never reach viewers
	_, err = owned.Revert(ctx, days[1].ID)
	require.NoError(t, err)

	viewer, err := e.Bootstrap(ctx, domain.Viewer{Token: token})
	require.NoError(t, err)
	t.Cleanup(viewer.Close)

	got := viewer.Status().Days
	assert.Equal(t, days.IDs(), got.IDs())
	assert.Equal(t, "Louvre", got[1].Notes)
	assert.True(t, got[1].IsPublished)
	assert.Empty(t, got[0].Notes)

	st := viewer.Status()
	assert.True(t, st.ReadOnly)
	assert.Equal(t, got[0].ID, st.OpenDayID)

	snap, ok := viewer.Snapshot()
	require.True(t, ok)
	assert.Equal(t, token, snap.Token)
	assert.Equal(t, got, snap.Days)

	_, ok = owned.Snapshot()
	assert.False(t, ok)
}

func TestBootstrap_UnknownMode(t *testing.T) {
	_, err := newEngine(t, repo.NewMemoryStore(), nil).Bootstrap(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
