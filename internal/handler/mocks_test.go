package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/jayt-piggie/my-trip-planner/internal/auth"
	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/enrich"
	"github.com/jayt-piggie/my-trip-planner/internal/handler"
	"github.com/jayt-piggie/my-trip-planner/internal/session"
)

const testOwner = "owner-1"

// ---- mock Itinerary --------------------------------------------------------

// mockItinerary is a test double for handler.Itinerary.
// Set only the method fields your test needs.
type mockItinerary struct {
	status   func() session.Status
	day      func(id string) (domain.DayRecord, error)
	toggle   func(id string) (string, error)
	publish  func(ctx context.Context, id string, content domain.DayContent) (domain.DayRecord, error)
	revert   func(ctx context.Context, id string) (domain.DayRecord, error)
	move     func(ctx context.Context, sourceID, targetID string) ([2]domain.DayRecord, error)
	share    func(ctx context.Context) (string, error)
	annotate func(ctx context.Context, id, kind string, fn session.EnrichFunc) (any, error)
}

func (m *mockItinerary) Status() session.Status { return m.status() }
func (m *mockItinerary) Day(id string) (domain.DayRecord, error) {
	return m.day(id)
}
func (m *mockItinerary) Toggle(id string) (string, error) { return m.toggle(id) }
func (m *mockItinerary) Publish(ctx context.Context, id string, c domain.DayContent) (domain.DayRecord, error) {
	return m.publish(ctx, id, c)
}
func (m *mockItinerary) Revert(ctx context.Context, id string) (domain.DayRecord, error) {
	return m.revert(ctx, id)
}
func (m *mockItinerary) Move(ctx context.Context, sourceID, targetID string) ([2]domain.DayRecord, error) {
	return m.move(ctx, sourceID, targetID)
}
func (m *mockItinerary) Share(ctx context.Context) (string, error) { return m.share(ctx) }
func (m *mockItinerary) Annotate(ctx context.Context, id, kind string, fn session.EnrichFunc) (any, error) {
	return m.annotate(ctx, id, kind, fn)
}

// compile-time check: mockItinerary must satisfy handler.Itinerary.
var _ handler.Itinerary = (*mockItinerary)(nil)

// ---- mock Sessions ---------------------------------------------------------

type mockSessions struct {
	open  func(ctx context.Context, owner string) (handler.Itinerary, error)
	close func(owner string) bool
	view  func(ctx context.Context, token string) (domain.Snapshot, error)
}

func (m *mockSessions) Open(ctx context.Context, owner string) (handler.Itinerary, error) {
	return m.open(ctx, owner)
}
func (m *mockSessions) Close(owner string) bool { return m.close(owner) }
func (m *mockSessions) View(ctx context.Context, token string) (domain.Snapshot, error) {
	return m.view(ctx, token)
}

var _ handler.Sessions = (*mockSessions)(nil)

// sessionsFor returns a mockSessions that opens it for testOwner.
func sessionsFor(it handler.Itinerary) *mockSessions {
	return &mockSessions{
		open: func(_ context.Context, owner string) (handler.Itinerary, error) {
			if owner != testOwner {
				return nil, domain.ErrNotFound
			}
			return it, nil
		},
	}
}

// ---- mock enrichment providers ---------------------------------------------

type mockDevices struct {
	issue    func() (auth.Device, error)
	issueFor func(ownerKey string) (auth.Device, error)
}

func (m *mockDevices) Issue() (auth.Device, error) { return m.issue() }
func (m *mockDevices) IssueFor(ownerKey string) (auth.Device, error) {
	return m.issueFor(ownerKey)
}

var _ handler.DeviceIssuer = (*mockDevices)(nil)

type mockForecaster struct {
	forecast func(ctx context.Context, day domain.DayRecord) (enrich.Forecast, error)
}

func (m *mockForecaster) Forecast(ctx context.Context, day domain.DayRecord) (enrich.Forecast, error) {
	return m.forecast(ctx, day)
}

var _ handler.Forecaster = (*mockForecaster)(nil)

type mockDrafter struct {
	draft func(ctx context.Context, day domain.DayRecord, hint string) (string, error)
}

func (m *mockDrafter) Draft(ctx context.Context, day domain.DayRecord, hint string) (string, error) {
	return m.draft(ctx, day, hint)
}

var _ handler.Drafter = (*mockDrafter)(nil)

type mockPlaces struct {
	search func(ctx context.Context, query string) ([]domain.Location, error)
}

func (m *mockPlaces) Search(ctx context.Context, query string) ([]domain.Location, error) {
	return m.search(ctx, query)
}

var _ handler.PlaceSearcher = (*mockPlaces)(nil)

// ---- helpers ---------------------------------------------------------------

// fakeDeviceAuth accepts "Bearer <owner>" and puts <owner> in the context.
func fakeDeviceAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || owner == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithOwnerKey(r.Context(), owner)))
	})
}

// newRouter wires a Server built from deps onto a chi router.
func newRouter(deps handler.Deps) http.Handler {
	deps.Logger = slog.New(slog.DiscardHandler)
	r := chi.NewRouter()
	handler.NewServer(deps).Routes(r, fakeDeviceAuth)
	return r
}

// do sends a request as testOwner. body may be empty.
func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer "+testOwner)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// errorCode extracts error.code from an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[handler.ErrorResponse](t, rec).Error.Code
}

// newRequest builds a request without a device token.
func newRequest(method, path, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	return httptest.NewRequest(method, path, rd)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
