package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jayt-piggie/my-trip-planner/internal/share"
)

// GetShared handles GET /shared/{token}.
// It needs no device token: the share token is the capability. Only
// published content is ever present in a snapshot.
func (s *Server) GetShared(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.View(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SnapshotResponse{
		Token:     snap.Token,
		Days:      daysToResponse(snap.Days),
		UpdatedAt: snap.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// GetSharedCalendar handles GET /shared/{token}/calendar.ics.
// It renders the snapshot as an iCalendar feed with one all-day event per day.
func (s *Server) GetSharedCalendar(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.View(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trip.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(share.ICS(snap)))
}
