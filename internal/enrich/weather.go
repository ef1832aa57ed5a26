package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

const defaultWeatherURL = "https://api.open-meteo.com/v1/forecast"

// TravelCity is the city of in-transit days, which have no forecast.
const TravelCity = "Travel"

// forecastConcurrency bounds the parallel requests of Forecasts.
const forecastConcurrency = 4

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// DefaultCities are the cities of the default trip plan.
var DefaultCities = map[string]Coordinates{
	"London": {Lat: 51.5074, Lon: -0.1278},
	"Paris":  {Lat: 48.8566, Lon: 2.3522},
}

// Forecast is the daily weather outlook for one day of the trip.
type Forecast struct {
	DayID    string `json:"day_id"`
	MaxTemp  int    `json:"max_temp"`
	MinTemp  int    `json:"min_temp"`
	Code     int    `json:"code"`
	Icon     string `json:"icon"`
	Clothing string `json:"clothing"`
}

type forecastResponse struct {
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weathercode"`
		MaxTemp     []float64 `json:"temperature_2m_max"`
		MinTemp     []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// WeatherClient fetches daily forecasts from the Open-Meteo API.
type WeatherClient struct {
	baseURL    string
	cities     map[string]Coordinates
	httpClient *http.Client
	now        func() time.Time
	log        *slog.Logger
}

// NewWeatherClient creates a WeatherClient. An empty baseURL selects the
// public Open-Meteo endpoint.
func NewWeatherClient(baseURL string, cities map[string]Coordinates, logger *slog.Logger) *WeatherClient {
	if baseURL == "" {
		baseURL = defaultWeatherURL
	}
	return &WeatherClient{
		baseURL:    baseURL,
		cities:     cities,
		httpClient: &http.Client{Timeout: requestTimeout},
		now:        time.Now,
		log:        logger.With("adapter", "open-meteo"),
	}
}

// Forecast returns the forecast for day.
// Returns ErrUnavailable for travel days, days before today and cities
// without known coordinates.
func (c *WeatherClient) Forecast(ctx context.Context, day domain.DayRecord) (Forecast, error) {
	coords, ok := c.cities[day.City]
	if day.City == "" || day.City == TravelCity || !ok {
		return Forecast{}, ErrUnavailable
	}
	today := c.now().UTC().Truncate(24 * time.Hour)
	if day.Date.Before(today) {
		return Forecast{}, ErrUnavailable
	}

	date := day.Date.Format(domain.DayIDLayout)
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	q.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min")
	q.Set("timezone", "auto")
	q.Set("start_date", date)
	q.Set("end_date", date)

	c.log.DebugContext(ctx, "forecast request", slog.String("city", day.City), slog.String("date", date))

	var resp forecastResponse
	if err := getJSON(ctx, c.httpClient, c.log, c.baseURL+"?"+q.Encode(), &resp); err != nil {
		return Forecast{}, fmt.Errorf("enrich.WeatherClient.Forecast: %w", err)
	}

	d := resp.Daily
	if len(d.MaxTemp) == 0 || len(d.MinTemp) == 0 || len(d.WeatherCode) == 0 {
		return Forecast{}, ErrUnavailable
	}

	maxTemp := roundHalfUp(d.MaxTemp[0])
	return Forecast{
		DayID:    day.ID,
		MaxTemp:  maxTemp,
		MinTemp:  roundHalfUp(d.MinTemp[0]),
		Code:     d.WeatherCode[0],
		Icon:     WeatherIcon(d.WeatherCode[0]),
		Clothing: ClothingIcons(maxTemp, d.WeatherCode[0]),
	}, nil
}

// Forecasts fetches forecasts for many days in parallel. Days without a
// forecast, or whose request failed, are left out of the result; failures
// are logged.
func (c *WeatherClient) Forecasts(ctx context.Context, days []domain.DayRecord) map[string]Forecast {
	var (
		mu  sync.Mutex
		out = make(map[string]Forecast, len(days))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(forecastConcurrency)
	for _, day := range days {
		g.Go(func() error {
			f, err := c.Forecast(gctx, day)
			if err != nil {
				if !errors.Is(err, ErrUnavailable) {
					c.log.WarnContext(gctx, "forecast failed", slog.String("day", day.ID), slog.String("error", err.Error()))
				}
				return nil
			}
			mu.Lock()
			out[day.ID] = f
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
