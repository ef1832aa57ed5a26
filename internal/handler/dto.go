package handler

import (
	"slices"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/enrich"
	"github.com/jayt-piggie/my-trip-planner/internal/session"
)

// LocationDTO is the wire form of a domain.Location.
type LocationDTO struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// DayDTO is the wire form of a domain.DayRecord.
type DayDTO struct {
	ID          string             `json:"id"`
	Date        openapi_types.Date `json:"date"`
	DayOfWeek   string             `json:"day_of_week"`
	Title       string             `json:"title"`
	City        string             `json:"city"`
	Icon        string             `json:"icon"`
	Notes       string             `json:"notes"`
	PhotoURL    string             `json:"photo_url"`
	Locations   []LocationDTO      `json:"locations"`
	IsPublished bool               `json:"is_published"`
	Forecast    *enrich.Forecast   `json:"forecast,omitempty"`
}

// ItineraryResponse is the body of GET /itinerary.
type ItineraryResponse struct {
	Days       []DayDTO          `json:"days"`
	OpenDayID  string            `json:"open_day_id"`
	ShareToken string            `json:"share_token,omitempty"`
	Pending    []string          `json:"pending"`
	Errors     map[string]string `json:"errors"`
}

// PublishRequest is the body of POST /itinerary/days/{id}/publish.
type PublishRequest struct {
	Notes     string        `json:"notes"`
	PhotoURL  string        `json:"photo_url"`
	Locations []LocationDTO `json:"locations"`
}

// MoveRequest is the body of POST /itinerary/move.
type MoveRequest struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// MoveResponse carries both days of a move as persisted.
type MoveResponse struct {
	Source DayDTO `json:"source"`
	Target DayDTO `json:"target"`
}

// ToggleResponse is the body of POST /itinerary/days/{id}/toggle.
type ToggleResponse struct {
	OpenDayID string `json:"open_day_id"`
}

// ShareResponse is the body of POST /itinerary/share.
type ShareResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// SnapshotResponse is the body of GET /shared/{token}.
type SnapshotResponse struct {
	Token     string   `json:"token"`
	Days      []DayDTO `json:"days"`
	UpdatedAt string   `json:"updated_at"`
}

// DeviceResponse is the body of the device endpoints.
type DeviceResponse struct {
	OwnerKey  string `json:"owner_key"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// DraftRequest is the optional body of POST /itinerary/days/{id}/draft.
type DraftRequest struct {
	Hint string `json:"hint"`
}

// DraftResponse carries suggested notes. They are not saved; the client
// publishes them like any other notes.
type DraftResponse struct {
	Notes string `json:"notes"`
}

// PlacesResponse is the body of GET /places.
type PlacesResponse struct {
	Data []LocationDTO `json:"data"`
}

// dayToResponse converts a domain.DayRecord into its wire form.
func dayToResponse(d domain.DayRecord) DayDTO {
	return DayDTO{
		ID:          d.ID,
		Date:        openapi_types.Date{Time: d.Date},
		DayOfWeek:   d.DayOfWeek,
		Title:       d.Title,
		City:        d.City,
		Icon:        d.Icon,
		Notes:       d.Notes,
		PhotoURL:    d.PhotoURL,
		Locations:   locationsToResponse(d.Locations),
		IsPublished: d.IsPublished,
	}
}

func daysToResponse(days []domain.DayRecord) []DayDTO {
	out := make([]DayDTO, len(days))
	for i, d := range days {
		out[i] = dayToResponse(d)
	}
	return out
}

func locationsToResponse(locs []domain.Location) []LocationDTO {
	out := make([]LocationDTO, len(locs))
	for i, l := range locs {
		out[i] = LocationDTO(l)
	}
	return out
}

// statusToResponse converts a session.Status, attaching any recorded
// forecast to its day.
func statusToResponse(st session.Status) ItineraryResponse {
	resp := ItineraryResponse{
		Days:       daysToResponse(st.Days),
		OpenDayID:  st.OpenDayID,
		ShareToken: st.ShareToken,
		Pending:    []string{},
		Errors:     map[string]string{},
	}
	forecasts := st.Annotations[session.KindForecast]
	for i := range resp.Days {
		if f, ok := forecasts[resp.Days[i].ID].(enrich.Forecast); ok {
			resp.Days[i].Forecast = &f
		}
	}
	for op, pending := range st.Pending {
		if pending {
			resp.Pending = append(resp.Pending, string(op))
		}
	}
	slices.Sort(resp.Pending)
	for op, msg := range st.Errors {
		resp.Errors[string(op)] = msg
	}
	return resp
}

// requestToContent converts a publish request into domain content.
// Text fields are trimmed; location ids are checked by the lifecycle.
func requestToContent(body PublishRequest) domain.DayContent {
	locs := make([]domain.Location, len(body.Locations))
	for i, l := range body.Locations {
		locs[i] = domain.Location{
			ID:   strings.TrimSpace(l.ID),
			Name: strings.TrimSpace(l.Name),
			Lat:  l.Lat,
			Lon:  l.Lon,
		}
	}
	return domain.DayContent{
		Notes:     strings.TrimSpace(body.Notes),
		PhotoURL:  strings.TrimSpace(body.PhotoURL),
		Locations: locs,
	}
}
