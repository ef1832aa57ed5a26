package session_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jayt-piggie/my-trip-planner/internal/calendar"
	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/enrich"
	"github.com/jayt-piggie/my-trip-planner/internal/metrics"
	"github.com/jayt-piggie/my-trip-planner/internal/move"
	"github.com/jayt-piggie/my-trip-planner/internal/repo"
	"github.com/jayt-piggie/my-trip-planner/internal/session"
	"github.com/jayt-piggie/my-trip-planner/internal/share"
)

const owner = "owner-1"

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// seedDays is a 3-day draft itinerary in Paris starting 2025-07-15.
func seedDays(t *testing.T) []domain.DayRecord {
	t.Helper()
	days, err := calendar.Generate(calendar.Plan{
		Start: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 17, 0, 0, 0, 0, time.UTC),
		Base:  calendar.Rule{Title: "Paris", City: "Paris", Icon: "🇫🇷"},
	})
	require.NoError(t, err)
	return days
}

type fixedTokens struct{ token string }

func (f fixedTokens) NewToken() (string, error) { return f.token, nil }

func newEngine(t *testing.T, store repo.Store, forecaster session.Forecaster) *session.Engine {
	t.Helper()
	log := discardLogger()
	return session.NewEngine(session.Config{
		Store:      store,
		Seed:       seedDays(t),
		Moves:      move.NewCoordinator(store, log),
		Shares:     share.NewBuilder(store, fixedTokens{"tok-1"}, share.NewCache(16, time.Minute, log), metrics.Noop(), log),
		Forecaster: forecaster,
		Metrics:    metrics.Noop(),
		Logger:     log,
	})
}

func openOwner(t *testing.T, e *session.Engine) *session.Session {
	t.Helper()
	s, err := e.Bootstrap(context.Background(), domain.Owner{Key: owner})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// isClosed reports whether s rejects writes as torn down. Publishing an
// unknown day leaves an open session untouched.
func isClosed(s *session.Session) bool {
	_, err := s.Publish(context.Background(), "no-such-day", domain.DayContent{})
	return errors.Is(err, session.ErrClosed)
}

func louvre() domain.DayContent {
	return domain.DayContent{
		Notes:     "Louvre",
		PhotoURL:  "https://example.com/louvre.jpg",
		Locations: []domain.Location{{ID: "l1", Name: "Louvre", Lat: 48.8606, Lon: 2.3376}},
	}
}

// gatedStore blocks PutOne and PutAll calls that touch gateID until release
// is closed, once armed. entered receives one value per blocked call.
type gatedStore struct {
	*repo.MemoryStore
	armed   atomic.Bool
	gateID  string
	entered chan struct{}
	release chan struct{}
}

func newGatedStore(gateID string) *gatedStore {
	return &gatedStore{
		MemoryStore: repo.NewMemoryStore(),
		gateID:      gateID,
		entered:     make(chan struct{}, 4),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) wait(ids ...string) {
	if !g.armed.Load() {
		return
	}
	for _, id := range ids {
		if id == g.gateID {
			g.entered <- struct{}{}
			<-g.release
			return
		}
	}
}

func (g *gatedStore) PutOne(ctx context.Context, owner string, record domain.DayRecord) error {
	g.wait(record.ID)
	return g.MemoryStore.PutOne(ctx, owner, record)
}

func (g *gatedStore) PutAll(ctx context.Context, owner string, records []domain.DayRecord) error {
	g.wait(domain.Itinerary(records).IDs()...)
	return g.MemoryStore.PutAll(ctx, owner, records)
}

// fakeForecaster returns a fixed forecast for every day and counts calls.
type fakeForecaster struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeForecaster) Forecasts(_ context.Context, days []domain.DayRecord) map[string]enrich.Forecast {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	out := map[string]enrich.Forecast{}
	for _, d := range days {
		out[d.ID] = enrich.Forecast{DayID: d.ID, MaxTemp: 21, Code: 1, Icon: enrich.WeatherIcon(1)}
	}
	return out
}
