// Package main is the entry point for the trip planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/jayt-piggie/my-trip-planner/internal/auth"
	"github.com/jayt-piggie/my-trip-planner/internal/calendar"
	"github.com/jayt-piggie/my-trip-planner/internal/config"
	"github.com/jayt-piggie/my-trip-planner/internal/enrich"
	"github.com/jayt-piggie/my-trip-planner/internal/handler"
	"github.com/jayt-piggie/my-trip-planner/internal/metrics"
	"github.com/jayt-piggie/my-trip-planner/internal/middleware"
	"github.com/jayt-piggie/my-trip-planner/internal/move"
	"github.com/jayt-piggie/my-trip-planner/internal/repo"
	"github.com/jayt-piggie/my-trip-planner/internal/session"
	"github.com/jayt-piggie/my-trip-planner/internal/share"
	"github.com/jayt-piggie/my-trip-planner/migrations"
)

// snapshotCacheTTL bounds how stale a cached share snapshot can be on an
// instance that did not perform the share.
const snapshotCacheTTL = 5 * time.Minute

// sessionSweepInterval is how often idle owner sessions are looked for.
const sessionSweepInterval = time.Minute

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Store ------------------------------------------------------------
	store, closeStore, err := openStore(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// --- Trip plan --------------------------------------------------------
	plan, err := calendar.LoadPlan(cfg.TripPlanPath)
	if err != nil {
		slog.Error("failed to load trip plan", "error", err)
		os.Exit(1)
	}
	seed, err := calendar.Generate(plan)
	if err != nil {
		slog.Error("failed to generate itinerary", "error", err)
		os.Exit(1)
	}
	slog.Info("trip plan loaded", "days", len(seed), "start", seed[0].ID, "end", seed[len(seed)-1].ID)

	// --- Services ---------------------------------------------------------
	m := metrics.New(cfg.MetricsEnabled)
	shares := share.NewBuilder(store, share.RandomTokens(),
		share.NewCache(cfg.SnapshotCacheMB, snapshotCacheTTL, logger), m, logger)
	weather := enrich.NewWeatherClient(cfg.WeatherBaseURL, enrich.DefaultCities, logger)

	engine := session.NewEngine(session.Config{
		Store:      store,
		Seed:       seed,
		Moves:      move.NewCoordinator(store, logger),
		Shares:     shares,
		Forecaster: weather,
		Metrics:    m,
		Logger:     logger,
	})
	registry := session.NewRegistry(engine)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go registry.Run(sweepCtx, sessionSweepInterval, cfg.SessionIdleTTL)
	devices := auth.NewDeviceTokens(cfg.DeviceTokenSecret, cfg.DeviceTokenTTL)

	drafter := enrich.NewDrafter(cfg.AnthropicAPIKey, cfg.AnthropicModel, logger)
	if !drafter.Enabled() {
		slog.Info("note drafting disabled: ANTHROPIC_API_KEY not set")
	}

	server := handler.NewServer(handler.Deps{
		Sessions:   handler.NewSessions(registry, engine),
		Devices:    devices,
		Forecaster: weather,
		Drafter:    drafter,
		Places:     enrich.NewGeocoder(cfg.GeocodingBaseURL, logger),
		Logger:     logger,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → Metrics → MaxBodySize.
	// CORS runs before routing so preflight requests never reach auth.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMetrics(m))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	server.Routes(r, middleware.NewDeviceAuth(devices, logger))
	if cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	// --- HTTP Server ------------------------------------------------------
	// Drafting calls a language model, so writes get more time than reads.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	stopSweep()
	slog.Info("closing sessions", "active", registry.Len())
	// Waits for in-flight writes and enrichment tasks of every session.
	registry.CloseAll()
	slog.Info("server stopped")
}

// openStore returns the configured Store and a function releasing it.
// For Postgres it verifies the connection and, unless disabled, applies
// pending migrations before the server accepts traffic.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store: itineraries are lost on restart")
		return repo.NewMemoryStore(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info("database connection established")

	if cfg.MigrateOnStart {
		// goose drives database/sql; reuse the pool's connections for it.
		db := stdlib.OpenDBFromPool(pool)
		err := migrations.Up(ctx, db, log)
		_ = db.Close()
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return repo.NewPostgresStore(pool), pool.Close, nil
}
