package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

// Registry keeps at most one live session per owner key, so every write of
// an owner goes through the same cache. Sessions not opened for a while are
// evicted by Run.
type Registry struct {
	engine *Engine
	group  singleflight.Group

	mu       sync.Mutex
	sessions map[string]*Session
	lastSeen map[string]time.Time
}

// NewRegistry constructs an empty Registry.
func NewRegistry(engine *Engine) *Registry {
	return &Registry{
		engine:   engine,
		sessions: map[string]*Session{},
		lastSeen: map[string]time.Time{},
	}
}

// Open returns the owner's live session, bootstrapping one if needed, and
// marks it as used. Concurrent calls for the same owner share a single
// bootstrap.
func (r *Registry) Open(ctx context.Context, owner string) (*Session, error) {
	if s, ok := r.touch(owner); ok {
		return s, nil
	}

	v, err, _ := r.group.Do(owner, func() (any, error) {
		if s, ok := r.touch(owner); ok {
			return s, nil
		}
		s, err := r.engine.Bootstrap(context.WithoutCancel(ctx), domain.Owner{Key: owner})
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.sessions[owner] = s
		r.lastSeen[owner] = time.Now()
		n := len(r.sessions)
		r.mu.Unlock()
		r.engine.metrics.SetActiveSessions(n)
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("session.Registry.Open: %w", err)
	}
	return v.(*Session), nil
}

func (r *Registry) touch(owner string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[owner]
	if ok {
		r.lastSeen[owner] = time.Now()
	}
	return s, ok
}

// Close tears down the owner's session. It reports whether one was live.
func (r *Registry) Close(owner string) bool {
	r.mu.Lock()
	s, ok := r.sessions[owner]
	delete(r.sessions, owner)
	delete(r.lastSeen, owner)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.engine.metrics.SetActiveSessions(n)
	s.Close()
	return true
}

// CloseAll tears down every session. It is called on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = map[string]*Session{}
	r.lastSeen = map[string]time.Time{}
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	r.engine.metrics.SetActiveSessions(0)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictIdle closes the sessions last opened before the given time that have
// no write or enrichment task in flight, and returns how many it closed.
func (r *Registry) EvictIdle(before time.Time) int {
	r.mu.Lock()
	var idle []*Session
	for owner, s := range r.sessions {
		if !r.lastSeen[owner].Before(before) || s.inFlight() {
			continue
		}
		idle = append(idle, s)
		delete(r.sessions, owner)
		delete(r.lastSeen, owner)
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if len(idle) == 0 {
		return 0
	}
	r.engine.metrics.SetActiveSessions(n)
	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

// Run evicts sessions idle for longer than maxIdle every interval until ctx
// is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.EvictIdle(time.Now().Add(-maxIdle)); n > 0 {
				r.engine.log.InfoContext(ctx, "idle sessions evicted", "evicted", n, "active", r.Len())
			}
		}
	}
}
