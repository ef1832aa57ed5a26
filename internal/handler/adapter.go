package handler

import (
	"context"
	"fmt"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/session"
)

// registrySessions adapts a session.Registry and its Engine to Sessions.
type registrySessions struct {
	registry *session.Registry
	engine   *session.Engine
}

// Compile-time check that registrySessions satisfies Sessions.
var _ Sessions = (*registrySessions)(nil)

// NewSessions returns the production Sessions: owner sessions live in the
// registry; viewer sessions are opened per request and closed once the
// snapshot has been read.
func NewSessions(registry *session.Registry, engine *session.Engine) Sessions {
	return &registrySessions{registry: registry, engine: engine}
}

func (a *registrySessions) Open(ctx context.Context, owner string) (Itinerary, error) {
	s, err := a.registry.Open(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (a *registrySessions) Close(owner string) bool {
	return a.registry.Close(owner)
}

func (a *registrySessions) View(ctx context.Context, token string) (domain.Snapshot, error) {
	s, err := a.engine.Bootstrap(ctx, domain.Viewer{Token: token})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("handler.Sessions.View: %w", err)
	}
	defer s.Close()

	snap, _ := s.Snapshot()
	return snap, nil
}
