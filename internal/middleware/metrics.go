package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jayt-piggie/my-trip-planner/internal/metrics"
)

// NewMetrics returns a middleware that records request counts and durations
// labelled by chi route pattern (e.g. /itinerary/days/{id}/publish), so ids
// in the path do not explode label cardinality.
func NewMetrics(m metrics.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			m.IncRequestsTotal(route, ww.Status())
			m.ObserveRequestDuration(route, time.Since(start))
		})
	}
}
