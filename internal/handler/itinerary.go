package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jayt-piggie/my-trip-planner/internal/auth"
)

// ownerSession resolves the caller's live session, bootstrapping it on the
// first request of the device. It writes the error response and returns
// false when no session could be opened.
func (s *Server) ownerSession(w http.ResponseWriter, r *http.Request) (Itinerary, bool) {
	owner, ok := auth.OwnerKey(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "device token required")
		return nil, false
	}
	it, err := s.sessions.Open(r.Context(), owner)
	if err != nil {
		s.writeDomainError(w, r, err)
		return nil, false
	}
	return it, true
}

// GetItinerary handles GET /itinerary.
// It returns every day of the owner's trip with the session state: the open
// day, the share token, pending operations, the last error of each
// operation, and any forecasts fetched so far.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	it, ok := s.ownerSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, statusToResponse(it.Status()))
}

// DeleteSession handles DELETE /itinerary/session.
// It tears the cached session down; stored days are untouched and the next
// request bootstraps a fresh session from the store.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerKey(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "device token required")
		return
	}
	s.sessions.Close(owner)
	w.WriteHeader(http.StatusNoContent)
}

// PostPublish handles POST /itinerary/days/{id}/publish.
func (s *Server) PostPublish(w http.ResponseWriter, r *http.Request) {
	var body PublishRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	it, ok := s.ownerSession(w, r)
	if !ok {
		return
	}

	day, err := it.Publish(r.Context(), chi.URLParam(r, "id"), requestToContent(body))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dayToResponse(day))
}

// PostRevert handles POST /itinerary/days/{id}/revert.
// The day goes back to draft with its content kept for editing.
func (s *Server) PostRevert(w http.ResponseWriter, r *http.Request) {
	it, ok := s.ownerSession(w, r)
	if !ok {
		return
	}

	day, err := it.Revert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dayToResponse(day))
}

// PostToggle handles POST /itinerary/days/{id}/toggle.
func (s *Server) PostToggle(w http.ResponseWriter, r *http.Request) {
	it, ok := s.ownerSession(w, r)
	if !ok {
		return
	}

	open, err := it.Toggle(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{OpenDayID: open})
}

// PostMove handles POST /itinerary/move.
// The content and publish state of the two days are exchanged; their dates
// stay where they are.
func (s *Server) PostMove(w http.ResponseWriter, r *http.Request) {
	var body MoveRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	it, ok := s.ownerSession(w, r)
	if !ok {
		return
	}

	days, err := it.Move(r.Context(), body.SourceID, body.TargetID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MoveResponse{
		Source: dayToResponse(days[0]),
		Target: dayToResponse(days[1]),
	})
}

// PostShare handles POST /itinerary/share.
// It refreshes the public snapshot and returns its token, which stays the
// same across shares of the same owner.
func (s *Server) PostShare(w http.ResponseWriter, r *http.Request) {
	it, ok := s.ownerSession(w, r)
	if !ok {
		return
	}

	token, err := it.Share(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ShareResponse{Token: token, URL: sharedPath(token)})
}

func sharedPath(token string) string {
	return "/shared/" + token
}
