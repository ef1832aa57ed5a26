package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

// KindForecast is the annotation kind of weather forecasts.
const KindForecast = "forecast"

// EnrichFunc computes an enrichment for one day.
type EnrichFunc func(ctx context.Context, day domain.DayRecord) (any, error)

// Task is a running enrichment. Its result is recorded on the session only
// if the session is still open and the day still exists when it finishes.
type Task struct {
	done  chan struct{}
	value any
	err   error
}

// Wait blocks until the task finishes or ctx is done. Giving up on a task
// does not cancel it.
func (t *Task) Wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Enrich starts fn for the day with the given id on a goroutine bound to the
// session. A successful result is stored under kind in the session's
// annotations. Close cancels the task's context.
func (s *Session) Enrich(id, kind string, fn EnrichFunc) (*Task, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("session.Session.Enrich: %w", ErrClosed)
	}
	day, ok := s.days.Find(id)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("session.Session.Enrich: %w: day %q", domain.ErrNotFound, id)
	}
	s.opPending[OpEnrich]++
	s.tasks.Add(1)
	s.mu.Unlock()

	t := &Task{done: make(chan struct{})}
	go func() {
		defer s.tasks.Done()
		defer close(t.done)

		t.value, t.err = fn(s.ctx, day.Clone())
		s.annotate(kind, map[string]any{id: t.value}, t.err)
	}()
	return t, nil
}

// prefetchForecasts fetches forecasts for every cached day in the
// background.
func (s *Session) prefetchForecasts() {
	s.mu.Lock()
	days := s.days.Clone()
	s.opPending[OpEnrich]++
	s.tasks.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.tasks.Done()

		found := s.engine.forecaster.Forecasts(s.ctx, days)
		byDay := make(map[string]any, len(found))
		for id, f := range found {
			byDay[id] = f
		}
		s.annotate(KindForecast, byDay, nil)
	}()
}

// annotate records enrichment results for days that still exist, unless the
// session has been closed.
func (s *Session) annotate(kind string, byDay map[string]any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opPending[OpEnrich]--
	if s.closed {
		return
	}
	if err != nil {
		s.engine.log.Debug("enrichment skipped", slog.String("kind", kind), slog.String("error", err.Error()))
		return
	}
	for id, v := range byDay {
		if s.days.Index(id) < 0 {
			continue
		}
		if s.annotations[kind] == nil {
			s.annotations[kind] = map[string]any{}
		}
		s.annotations[kind][id] = v
	}
}

// Annotate runs fn as an enrichment task and waits for its result until ctx
// is done. If the caller stops waiting, the task keeps running and its
// result is still recorded on the session.
func (s *Session) Annotate(ctx context.Context, id, kind string, fn EnrichFunc) (any, error) {
	t, err := s.Enrich(id, kind, fn)
	if err != nil {
		return nil, err
	}
	return t.Wait(ctx)
}
