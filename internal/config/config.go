// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable with STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// minSecretLen is the shortest DEVICE_TOKEN_SECRET accepted for HS256.
const minSecretLen = 32

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Store selects the persistence backend: "postgres" (default) or
	// "memory", which keeps everything in process and loses it on restart.
	Store string

	// DatabaseURL is the Postgres connection string. Required when Store is postgres.
	DatabaseURL string

	// MigrateOnStart applies pending migrations before serving. Defaults to true.
	MigrateOnStart bool

	// DeviceTokenSecret signs device tokens. Required, at least 32 characters.
	DeviceTokenSecret string

	// DeviceTokenTTL is how long an issued device token stays valid.
	// Defaults to one year; a device keeps its owner key by refreshing.
	DeviceTokenTTL time.Duration

	// SessionIdleTTL is how long an owner session stays cached without a
	// request before it is evicted. Defaults to 30 minutes.
	SessionIdleTTL time.Duration

	// TripPlanPath is an optional YAML trip plan. Empty selects the built-in plan.
	TripPlanPath string

	// SnapshotCacheMB sizes the in-process share snapshot cache. 0 disables it.
	SnapshotCacheMB int

	// MetricsEnabled exposes Prometheus metrics on /metrics. Defaults to true.
	MetricsEnabled bool

	// AnthropicAPIKey enables drafted notes. Empty disables the feature.
	AnthropicAPIKey string

	// AnthropicModel overrides the drafting model.
	AnthropicModel string

	// WeatherBaseURL and GeocodingBaseURL override the Open-Meteo endpoints.
	WeatherBaseURL   string
	GeocodingBaseURL string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable whose value cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Store:             strings.ToLower(getEnv("STORE", StorePostgres)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DeviceTokenSecret: os.Getenv("DEVICE_TOKEN_SECRET"),
		TripPlanPath:      os.Getenv("TRIP_PLAN_PATH"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    os.Getenv("ANTHROPIC_MODEL"),
		WeatherBaseURL:    os.Getenv("WEATHER_BASE_URL"),
		GeocodingBaseURL:  os.Getenv("GEOCODING_BASE_URL"),
	}

	var missing []string

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreMemory:
	default:
		return Config{}, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.Store)
	}

	if cfg.DeviceTokenSecret == "" {
		missing = append(missing, "DEVICE_TOKEN_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if len(cfg.DeviceTokenSecret) < minSecretLen {
		return Config{}, fmt.Errorf("DEVICE_TOKEN_SECRET must be at least %d characters", minSecretLen)
	}

	var err error
	if cfg.MigrateOnStart, err = parseBool("MIGRATE_ON_START", true); err != nil {
		return Config{}, err
	}
	if cfg.MetricsEnabled, err = parseBool("METRICS_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.DeviceTokenTTL, err = parseDuration("DEVICE_TOKEN_TTL", 365*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SessionIdleTTL, err = parseDuration("SESSION_IDLE_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SnapshotCacheMB, err = parseInt("SNAPSHOT_CACHE_MB", 64); err != nil {
		return Config{}, err
	}
	maxBody, err := parseInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func parseInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: must be a positive duration, got %q", key, v)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
