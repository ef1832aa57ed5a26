package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

func TestPostgresStore_Snapshot_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	days := daysFixture()
	days[1].Notes = "Louvre"
	days[1].IsPublished = true
	require.NoError(t, s.PutSnapshot(ctx, "owner-1", "tok-1", days))

	got, err := s.GetSnapshot(ctx, "tok-1")

	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.Token)
	require.Len(t, got.Days, 3)
	assert.Equal(t, days[1].ID, got.Days[1].ID)
	assert.Equal(t, "Louvre", got.Days[1].Notes)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestPostgresStore_Snapshot_OverwriteInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	days := daysFixture()
	require.NoError(t, s.PutSnapshot(ctx, "owner-1", "tok-1", days))
	days[0].Notes = "refreshed"
	days[0].IsPublished = true
	require.NoError(t, s.PutSnapshot(ctx, "owner-1", "tok-1", days))

	got, err := s.GetSnapshot(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "refreshed", got.Days[0].Notes)
}

func TestPostgresStore_Snapshot_OtherOwnersToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutSnapshot(ctx, "owner-1", "tok-1", daysFixture()))

	err := s.PutSnapshot(ctx, "owner-2", "tok-1", daysFixture())

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPostgresStore_GetSnapshot_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSnapshot(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresStore_ShareToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetShareToken(ctx, "owner-1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.SetShareToken(ctx, "owner-1", "tok-1"))

	got, err := s.GetShareToken(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got)
}
