package handler

import (
	"net/http"
	"time"

	"github.com/jayt-piggie/my-trip-planner/internal/auth"
)

// PostDevice handles POST /session/device.
// It mints a new owner key and the token that carries it. The client keeps
// the token; losing it means losing access to that itinerary.
func (s *Server) PostDevice(w http.ResponseWriter, r *http.Request) {
	dev, err := s.devices.Issue()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "device issued", "owner", dev.OwnerKey)
	writeJSON(w, http.StatusCreated, deviceToResponse(dev))
}

// PostDeviceRefresh handles POST /session/device/refresh.
// It returns a fresh token for the caller's owner key.
func (s *Server) PostDeviceRefresh(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerKey(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "device token required")
		return
	}
	dev, err := s.devices.IssueFor(owner)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deviceToResponse(dev))
}

func deviceToResponse(d auth.Device) DeviceResponse {
	return DeviceResponse{
		OwnerKey:  d.OwnerKey,
		Token:     d.Token,
		ExpiresAt: d.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
