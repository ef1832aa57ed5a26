package handler

import (
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/session"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// errorMapping ties a sentinel error to its status and code. Order matters:
// a seed failure also wraps the transport failure that caused it.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrPartialSeed, http.StatusServiceUnavailable, "partial_seed"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrInvalidReference, http.StatusConflict, "invalid_reference"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domain.ErrBusy, http.StatusConflict, "busy"},
	{domain.ErrReadOnly, http.StatusForbidden, "read_only"},
	{session.ErrClosed, http.StatusConflict, "session_closed"},
	{domain.ErrTransport, http.StatusBadGateway, "transport_error"},
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// writeDomainError maps err to a status code via errors.Is and writes the
// error body. Unknown errors are logged and reported as 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMapping {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := publicMessage(err, m.target)
		if m.status >= http.StatusInternalServerError {
			s.log.WarnContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
			// Store and network details stay in the log.
			msg = m.target.Error() + ": please retry"
		}
		writeError(w, m.status, m.code, msg)
		return
	}

	s.log.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// publicMessage extracts the human-readable part of a wrapped sentinel error.
// e.g. "session.Session.Move: move.Coordinator.Move: invalid reference: cannot
// move day ..." → "invalid reference: cannot move day ...".
func publicMessage(err, target error) string {
	msg := err.Error()
	if i := strings.Index(msg, target.Error()); i >= 0 {
		return msg[i:]
	}
	return msg
}

// decodeJSON decodes the request body into dst, writing a 400 (or 413 when
// the body limit was hit) and returning false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return false
	}
	return true
}
