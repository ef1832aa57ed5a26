package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/jayt-piggie/my-trip-planner/internal/metrics"
	"github.com/jayt-piggie/my-trip-planner/internal/middleware"
)

// recordingMetrics captures request observations; everything else is a no-op.
type recordingMetrics struct {
	metrics.Provider
	mu       sync.Mutex
	requests map[string][]int
}

func (m *recordingMetrics) IncRequestsTotal(route string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[route] = append(m.requests[route], status)
}

func (m *recordingMetrics) ObserveRequestDuration(string, time.Duration) {}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	m := &recordingMetrics{Provider: metrics.Noop(), requests: map[string][]int{}}

	r := chi.NewRouter()
	r.Use(middleware.NewMetrics(m))
	r.Post("/itinerary/days/{id}/publish", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	for _, id := range []string{"2025-07-15", "2025-07-16"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/itinerary/days/"+id+"/publish", nil))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, []int{409, 409}, m.requests["/itinerary/days/{id}/publish"])
	assert.Equal(t, []int{404}, m.requests["unmatched"])
}
