// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. Methods are split into files by
// surface (health.go, device.go, itinerary.go, enrich.go, shared.go) but
// share the same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jayt-piggie/my-trip-planner/internal/auth"
	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/enrich"
	"github.com/jayt-piggie/my-trip-planner/internal/session"
)

// Itinerary is the owner session surface the handlers drive.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without a store or an engine.
type Itinerary interface {
	Status() session.Status
	Day(id string) (domain.DayRecord, error)
	Toggle(id string) (string, error)
	Publish(ctx context.Context, id string, content domain.DayContent) (domain.DayRecord, error)
	Revert(ctx context.Context, id string) (domain.DayRecord, error)
	Move(ctx context.Context, sourceID, targetID string) ([2]domain.DayRecord, error)
	Share(ctx context.Context) (string, error)
	Annotate(ctx context.Context, id, kind string, fn session.EnrichFunc) (any, error)
}

// Sessions opens owner sessions and viewer snapshots.
type Sessions interface {
	Open(ctx context.Context, owner string) (Itinerary, error)
	Close(owner string) bool
	View(ctx context.Context, token string) (domain.Snapshot, error)
}

// DeviceIssuer mints device identities.
type DeviceIssuer interface {
	Issue() (auth.Device, error)
	IssueFor(ownerKey string) (auth.Device, error)
}

// Forecaster looks up the weather for one day.
type Forecaster interface {
	Forecast(ctx context.Context, day domain.DayRecord) (enrich.Forecast, error)
}

// Drafter suggests notes for one day.
type Drafter interface {
	Draft(ctx context.Context, day domain.DayRecord, hint string) (string, error)
}

// PlaceSearcher resolves a free-text query to candidate locations.
type PlaceSearcher interface {
	Search(ctx context.Context, query string) ([]domain.Location, error)
}

// Deps are the Server's collaborators. Forecaster, Drafter and Places may
// be nil; the matching endpoints then report the feature as unavailable.
type Deps struct {
	Sessions   Sessions
	Devices    DeviceIssuer
	Forecaster Forecaster
	Drafter    Drafter
	Places     PlaceSearcher
	Logger     *slog.Logger
}

// Server holds the dependencies of every endpoint.
type Server struct {
	sessions   Sessions
	devices    DeviceIssuer
	forecaster Forecaster
	drafter    Drafter
	places     PlaceSearcher
	log        *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		sessions:   d.Sessions,
		devices:    d.Devices,
		forecaster: d.Forecaster,
		drafter:    d.Drafter,
		places:     d.Places,
		log:        log.With("component", "handler"),
	}
}

// Routes registers every endpoint on r. requireDevice guards the owner
// endpoints; it must put the owner key in the request context.
func (s *Server) Routes(r chi.Router, requireDevice func(http.Handler) http.Handler) {
	r.Get("/healthz", s.GetHealth)
	r.Post("/session/device", s.PostDevice)

	r.Get("/shared/{token}", s.GetShared)
	r.Get("/shared/{token}/calendar.ics", s.GetSharedCalendar)

	r.Group(func(r chi.Router) {
		r.Use(requireDevice)

		r.Post("/session/device/refresh", s.PostDeviceRefresh)

		r.Get("/itinerary", s.GetItinerary)
		r.Delete("/itinerary/session", s.DeleteSession)
		r.Post("/itinerary/days/{id}/publish", s.PostPublish)
		r.Post("/itinerary/days/{id}/revert", s.PostRevert)
		r.Post("/itinerary/days/{id}/toggle", s.PostToggle)
		r.Post("/itinerary/move", s.PostMove)
		r.Post("/itinerary/share", s.PostShare)

		r.Get("/itinerary/days/{id}/forecast", s.GetForecast)
		r.Post("/itinerary/days/{id}/draft", s.PostDraft)
		r.Get("/places", s.GetPlaces)
	})
}
