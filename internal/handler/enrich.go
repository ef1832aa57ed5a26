package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/enrich"
	"github.com/jayt-piggie/my-trip-planner/internal/session"
)

// GetForecast handles GET /itinerary/days/{id}/forecast.
// The forecast is recorded on the session and shows up in GET /itinerary.
// When there is no forecast for the day (travel day, past date, unknown
// city, provider down) the response is 204 and the itinerary is unaffected.
func (s *Server) GetForecast(w http.ResponseWriter, r *http.Request) {
	if s.forecaster == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	it, ok := s.ownerSession(w, r)
	if !ok {
		return
	}

	v, err := it.Annotate(r.Context(), chi.URLParam(r, "id"), session.KindForecast,
		func(ctx context.Context, day domain.DayRecord) (any, error) {
			return s.forecaster.Forecast(ctx, day)
		})
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, session.ErrClosed):
		s.writeDomainError(w, r, err)
		return
	case err != nil:
		if !errors.Is(err, enrich.ErrUnavailable) {
			s.log.WarnContext(r.Context(), "forecast failed", "error", err)
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	f, ok := v.(enrich.Forecast)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// PostDraft handles POST /itinerary/days/{id}/draft.
// It suggests notes for the day from its cached record. The body is
// optional; {"hint": "..."} steers the suggestion.
func (s *Server) PostDraft(w http.ResponseWriter, r *http.Request) {
	if s.drafter == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "note drafting is not configured")
		return
	}

	var body DraftRequest
	if !decodeOptionalJSON(w, r, &body) {
		return
	}
	it, ok := s.ownerSession(w, r)
	if !ok {
		return
	}
	day, err := it.Day(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	notes, err := s.drafter.Draft(r.Context(), day, strings.TrimSpace(body.Hint))
	if err != nil {
		if errors.Is(err, enrich.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "unavailable", "note drafting is not configured")
			return
		}
		s.log.WarnContext(r.Context(), "draft failed", "day", day.ID, "error", err)
		writeError(w, http.StatusBadGateway, "upstream_error", "note drafting failed: please retry")
		return
	}
	writeJSON(w, http.StatusOK, DraftResponse{Notes: notes})
}

// GetPlaces handles GET /places?q=.
// Lookup failures degrade to an empty list.
func (s *Server) GetPlaces(w http.ResponseWriter, r *http.Request) {
	resp := PlacesResponse{Data: []LocationDTO{}}
	if s.places == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	locs, err := s.places.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.log.WarnContext(r.Context(), "place search failed", "error", err)
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Data = locationsToResponse(locs)
	writeJSON(w, http.StatusOK, resp)
}

// decodeOptionalJSON is decodeJSON for bodies that may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return false
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return true
	}
	r.Body = io.NopCloser(bytes.NewReader(b))
	return decodeJSON(w, r, dst)
}
