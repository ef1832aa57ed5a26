package lifecycle_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/lifecycle"
)

func draftDay() domain.DayRecord {
	date := time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC)
	return domain.DayRecord{
		ID:        domain.DayID(date),
		Date:      date,
		DayOfWeek: "Wednesday",
		Title:     "A Day in Paris",
		City:      "Paris",
		Icon:      "🇫🇷",
		Locations: []domain.Location{},
	}
}

func louvre() domain.DayContent {
	return domain.DayContent{
		Notes:     "Louvre",
		PhotoURL:  "https://example.com/louvre.jpg",
		Locations: []domain.Location{{ID: "l1", Name: "Louvre", Lat: 48.8606, Lon: 2.3376}},
	}
}

func TestPublish_FromDraft(t *testing.T) {
	day := draftDay()

	got, err := lifecycle.Publish(day, louvre())

	require.NoError(t, err)
	assert.True(t, got.IsPublished)
	assert.Equal(t, lifecycle.Published, lifecycle.StateOf(got))
	assert.Equal(t, "Louvre", got.Notes)
	assert.Equal(t, louvre().Locations, got.Locations)
	// Identity fields are never touched.
	assert.Equal(t, day.ID, got.ID)
	assert.Equal(t, day.Title, got.Title)
	// Input is left untouched.
	assert.False(t, day.IsPublished)
	assert.Empty(t, day.Notes)
}

func TestPublish_AlreadyPublished(t *testing.T) {
	day, err := lifecycle.Publish(draftDay(), louvre())
	require.NoError(t, err)

	_, err = lifecycle.Publish(day, louvre())

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPublish_InvalidContent(t *testing.T) {
	cases := map[string][]domain.Location{
		"duplicate id": {{ID: "a", Name: "A"}, {ID: "a", Name: "B"}},
		"empty id":     {{ID: " ", Name: "A"}},
		"empty name":   {{ID: "a"}},
		"lat range":    {{ID: "a", Name: "A", Lat: 91}},
		"lon range":    {{ID: "a", Name: "A", Lon: -181}},
		"nan":          {{ID: "a", Name: "A", Lat: math.NaN()}},
	}
	for name, locs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := lifecycle.Publish(draftDay(), domain.DayContent{Locations: locs})
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestRevert_KeepsContent(t *testing.T) {
	published, err := lifecycle.Publish(draftDay(), louvre())
	require.NoError(t, err)

	got, err := lifecycle.Revert(published)

	require.NoError(t, err)
	assert.False(t, got.IsPublished)
	assert.Equal(t, published.Content(), got.Content())
}

func TestRevert_FromDraft(t *testing.T) {
	_, err := lifecycle.Revert(draftDay())

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// TestRevertThenPublish_RoundTrip verifies that reverting and republishing
// the same content restores the published day exactly.
func TestRevertThenPublish_RoundTrip(t *testing.T) {
	published, err := lifecycle.Publish(draftDay(), louvre())
	require.NoError(t, err)

	reverted, err := lifecycle.Revert(published)
	require.NoError(t, err)
	again, err := lifecycle.Publish(reverted, reverted.Content())
	require.NoError(t, err)

	assert.Equal(t, published, again)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "draft", lifecycle.Draft.String())
	assert.Equal(t, "published", lifecycle.Published.String())
}
