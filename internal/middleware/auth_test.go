package middleware_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayt-piggie/my-trip-planner/internal/auth"
	"github.com/jayt-piggie/my-trip-planner/internal/middleware"
)

// mockValidator is a func-field stub of the token validator.
type mockValidator struct {
	validateFn func(ctx context.Context, token string) (string, error)
}

func (m *mockValidator) ValidateToken(ctx context.Context, token string) (string, error) {
	return m.validateFn(ctx, token)
}

// ownerEcho writes the owner key found in the request context.
var ownerEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	key, _ := auth.OwnerKey(r.Context())
	_, _ = w.Write([]byte(key))
})

func newAuth(fn func(ctx context.Context, token string) (string, error)) http.Handler {
	return middleware.NewDeviceAuth(&mockValidator{validateFn: fn}, slog.New(slog.DiscardHandler))(ownerEcho)
}

func TestDeviceAuth_ValidToken_SetsOwnerKey(t *testing.T) {
	var gotToken string
	h := newAuth(func(_ context.Context, token string) (string, error) {
		gotToken = token
		return "owner-42", nil
	})

	req := httptest.NewRequest(http.MethodGet, "/itinerary", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc.def.ghi", gotToken)
	assert.Equal(t, "owner-42", rec.Body.String())
}

func TestDeviceAuth_MissingToken_Returns401(t *testing.T) {
	called := false
	h := newAuth(func(context.Context, string) (string, error) {
		called = true
		return "", nil
	})

	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/itinerary", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.JSONEq(t, `{"error":{"code":"unauthorized","message":"device token required"}}`, rec.Body.String())
	}
	assert.False(t, called)
}

func TestDeviceAuth_InvalidToken_Returns401(t *testing.T) {
	h := newAuth(func(context.Context, string) (string, error) {
		return "", errors.New("signature is invalid")
	})

	req := httptest.NewRequest(http.MethodGet, "/itinerary", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid device token")
}
