// Package session is the sync engine. An Engine bootstraps Sessions; a
// Session owns the cached itinerary of one owner (or one share snapshot for
// a viewer) and routes every write through the store before updating the
// cache, so the cache only ever shows persisted state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/enrich"
	"github.com/jayt-piggie/my-trip-planner/internal/metrics"
	"github.com/jayt-piggie/my-trip-planner/internal/move"
	"github.com/jayt-piggie/my-trip-planner/internal/repo"
	"github.com/jayt-piggie/my-trip-planner/internal/share"
)

// Forecaster fetches forecasts for many days at once. Days it cannot
// forecast are left out of the result.
type Forecaster interface {
	Forecasts(ctx context.Context, days []domain.DayRecord) map[string]enrich.Forecast
}

// Engine creates sessions. It is safe for concurrent use.
type Engine struct {
	store      repo.Store
	seed       domain.Itinerary
	moves      *move.Coordinator
	shares     *share.Builder
	forecaster Forecaster
	metrics    metrics.Provider
	log        *slog.Logger
}

// Config holds the Engine's collaborators. Forecaster may be nil, in which
// case sessions start without a forecast prefetch.
type Config struct {
	Store      repo.Store
	Seed       []domain.DayRecord
	Moves      *move.Coordinator
	Shares     *share.Builder
	Forecaster Forecaster
	Metrics    metrics.Provider
	Logger     *slog.Logger
}

// NewEngine constructs an Engine. Seed is the generated itinerary written
// for owners who have none yet.
func NewEngine(cfg Config) *Engine {
	m := cfg.Metrics
	if m == nil {
		m = metrics.Noop()
	}
	return &Engine{
		store:      cfg.Store,
		seed:       domain.Itinerary(cfg.Seed).Clone(),
		moves:      cfg.Moves,
		shares:     cfg.Shares,
		forecaster: cfg.Forecaster,
		metrics:    m,
		log:        cfg.Logger.With("component", "session"),
	}
}

// Bootstrap resolves mode into a live Session.
//
// A Viewer session holds the snapshot stored under its token and fails with
// domain.ErrNotFound when there is none. An Owner session loads the owner's
// days, seeding the store with the generated itinerary on first access.
// The seed is written as one batch; if that fails the error wraps
// domain.ErrPartialSeed and no session is created.
func (e *Engine) Bootstrap(ctx context.Context, mode domain.Mode) (*Session, error) {
	switch m := mode.(type) {
	case domain.Viewer:
		snap, err := e.shares.Snapshot(ctx, m.Token)
		if err != nil {
			return nil, fmt.Errorf("session.Engine.Bootstrap: %w", err)
		}
		return newSession(e, m, snap.Days, snap), nil

	case domain.Owner:
		days, err := e.loadOwner(ctx, m.Key)
		if err != nil {
			return nil, fmt.Errorf("session.Engine.Bootstrap: %w", err)
		}
		s := newSession(e, m, days, domain.Snapshot{})
		s.shareToken = e.lookupShareToken(ctx, m.Key)
		if e.forecaster != nil {
			s.prefetchForecasts()
		}
		return s, nil

	default:
		return nil, fmt.Errorf("session.Engine.Bootstrap: %w: unknown mode %T", domain.ErrValidation, mode)
	}
}

// loadOwner returns the owner's days, writing whatever part of the seed
// is missing.
func (e *Engine) loadOwner(ctx context.Context, owner string) (domain.Itinerary, error) {
	start := time.Now()
	stored, err := e.store.GetAll(ctx, owner)
	e.metrics.ObserveStoreDuration(string(repo.OpGetAll), time.Since(start))
	if err != nil {
		return nil, err
	}

	days := domain.Itinerary(stored)
	missing := e.missingSeed(days)
	if len(missing) == 0 {
		return days, nil
	}

	start = time.Now()
	err = e.store.PutAll(ctx, owner, missing)
	e.metrics.ObserveStoreDuration(string(repo.OpPutAll), time.Since(start))
	if err != nil {
		e.metrics.IncOperation("seed", outcome(err))
		e.log.ErrorContext(ctx, "seed failed",
			"owner", owner,
			"stored", len(days),
			"missing", len(missing),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrPartialSeed, err)
	}
	e.metrics.IncOperation("seed", "ok")
	e.log.InfoContext(ctx, "itinerary seeded", "owner", owner, "days", len(missing), "resumed", len(days) > 0)

	days = append(days.Clone(), missing...)
	days.SortByDate()
	return days, nil
}

// missingSeed returns the seed days absent from stored. An owner's day set
// is fixed once written: only a seed interrupted on a non-atomic store is
// completed, and only when every stored day belongs to the seed.
func (e *Engine) missingSeed(stored domain.Itinerary) []domain.DayRecord {
	if len(stored) == 0 {
		return e.seed.Clone()
	}
	if e.store.AtomicBatch() {
		return nil
	}
	seedIDs := e.seed.IDs()
	for _, id := range stored.IDs() {
		if !slices.Contains(seedIDs, id) {
			return nil
		}
	}
	var missing []domain.DayRecord
	for _, d := range e.seed {
		if stored.Index(d.ID) < 0 {
			missing = append(missing, d.Clone())
		}
	}
	return missing
}

// lookupShareToken returns the owner's existing share token, or "" when
// there is none or it could not be read.
func (e *Engine) lookupShareToken(ctx context.Context, owner string) string {
	token, err := e.store.GetShareToken(ctx, owner)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			e.log.WarnContext(ctx, "share token lookup failed", "owner", owner, "error", err)
		}
		return ""
	}
	return token
}

// outcome is the metrics label of an operation result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrPartialSeed):
		return "partial_seed"
	case errors.Is(err, domain.ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	case errors.Is(err, domain.ErrReadOnly):
		return "read_only"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "transport"
	}
}
