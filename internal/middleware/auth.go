package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jayt-piggie/my-trip-planner/internal/auth"
)

// tokenValidator resolves a device token to its owner key.
type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// NewDeviceAuth returns a middleware that requires a valid device token in
// the Authorization header ("Bearer <token>") and stores the owner key in
// the request context (see auth.OwnerKey). Requests without a valid token
// are rejected with 401.
func NewDeviceAuth(validator tokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "device token required")
				return
			}
			owner, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				log.DebugContext(r.Context(), "device token rejected", "error", err)
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid device token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithOwnerKey(r.Context(), owner)))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
