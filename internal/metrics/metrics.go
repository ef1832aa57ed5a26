// Package metrics exposes Prometheus instrumentation for the HTTP surface,
// the sync engine and the snapshot cache. When metrics are disabled a no-op
// Provider is used so callers never branch on configuration.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider records application metrics.
type Provider interface {
	IncRequestsTotal(route string, status int)
	ObserveRequestDuration(route string, d time.Duration)
	// IncOperation counts a session write (publish, revert, move, share,
	// seed) by outcome: "ok" or an error code such as "transport".
	IncOperation(op, outcome string)
	ObserveStoreDuration(op string, d time.Duration)
	IncCacheHits()
	IncCacheMisses()
	SetActiveSessions(n int)
	// Handler serves the registry in the Prometheus text format.
	Handler() http.Handler
}

type promProvider struct {
	reg             *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	operationsTotal *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	activeSessions  prometheus.Gauge
}

// New returns a Prometheus-backed Provider on its own registry, or a no-op
// Provider when enabled is false.
func New(enabled bool) Provider {
	if !enabled {
		return Noop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &promProvider{
		reg: reg,
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trip_planner_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "status"}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trip_planner_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),

		operationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trip_planner_operations_total",
			Help: "Itinerary writes by operation and outcome",
		}, []string{"op", "outcome"}),

		storeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trip_planner_store_duration_seconds",
			Help:    "Duration of store round trips in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),

		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "trip_planner_snapshot_cache_hits_total",
			Help: "Total number of share snapshot cache hits",
		}),

		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "trip_planner_snapshot_cache_misses_total",
			Help: "Total number of share snapshot cache misses",
		}),

		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "trip_planner_active_sessions",
			Help: "Number of live owner sessions",
		}),
	}
}

func (m *promProvider) IncRequestsTotal(route string, status int) {
	m.requestsTotal.WithLabelValues(route, httpStatusBucket(status)).Inc()
}

func (m *promProvider) ObserveRequestDuration(route string, d time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *promProvider) IncOperation(op, outcome string) {
	m.operationsTotal.WithLabelValues(op, outcome).Inc()
}

func (m *promProvider) ObserveStoreDuration(op string, d time.Duration) {
	m.storeDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *promProvider) IncCacheHits()   { m.cacheHits.Inc() }
func (m *promProvider) IncCacheMisses() { m.cacheMisses.Inc() }

func (m *promProvider) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

func (m *promProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Noop returns a Provider that records nothing. Its Handler responds 404.
func Noop() Provider { return noopMetrics{} }

type noopMetrics struct{}

func (noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (noopMetrics) IncOperation(_, _ string)                         {}
func (noopMetrics) ObserveStoreDuration(_ string, _ time.Duration)   {}
func (noopMetrics) IncCacheHits()                                    {}
func (noopMetrics) IncCacheMisses()                                  {}
func (noopMetrics) SetActiveSessions(_ int)                          {}
func (noopMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }
