package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	maxPlaces           = 10
)

type geocodeResponse struct {
	Results []struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

// Geocoder resolves free-text place queries to candidate locations using
// the Open-Meteo geocoding API.
type Geocoder struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewGeocoder creates a Geocoder. An empty baseURL selects the public
// Open-Meteo endpoint.
func NewGeocoder(baseURL string, logger *slog.Logger) *Geocoder {
	if baseURL == "" {
		baseURL = defaultGeocodingURL
	}
	return &Geocoder{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        logger.With("adapter", "geocoding"),
	}
}

// Search returns up to 10 locations matching query, best match first.
// An empty query or no match yields an empty slice.
func (g *Geocoder) Search(ctx context.Context, query string) ([]domain.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Location{}, nil
	}

	q := url.Values{}
	q.Set("name", query)
	q.Set("count", strconv.Itoa(maxPlaces))
	q.Set("language", "en")
	q.Set("format", "json")

	var resp geocodeResponse
	if err := getJSON(ctx, g.httpClient, g.log, g.baseURL+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("enrich.Geocoder.Search: %w", err)
	}

	locs := make([]domain.Location, 0, len(resp.Results))
	for _, r := range resp.Results {
		name := r.Name
		if r.Country != "" {
			name += ", " + r.Country
		}
		locs = append(locs, domain.Location{
			ID:   strconv.FormatInt(r.ID, 10),
			Name: name,
			Lat:  r.Latitude,
			Lon:  r.Longitude,
		})
	}

	g.log.DebugContext(ctx, "geocoding response", slog.String("query", query), slog.Int("results", len(locs)))
	return locs, nil
}
