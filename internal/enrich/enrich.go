// Package enrich calls the optional collaborators that decorate an
// itinerary: weather forecasts, place search and drafted notes. Every call
// is best-effort; callers log failures and carry on without the enrichment.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// ErrUnavailable is returned when an enrichment does not apply to the input
// (a travel day, a past date, a city without coordinates, a disabled
// collaborator). It is not a failure of the remote service.
var ErrUnavailable = errors.New("enrichment unavailable")

const requestTimeout = 10 * time.Second

// getJSON issues a GET to reqURL and decodes a 200 response into dst.
// The request is retried once on a network error or 5xx status.
func getJSON(ctx context.Context, client *http.Client, log *slog.Logger, reqURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := doWithRetry(ctx, client, log, req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func doWithRetry(ctx context.Context, client *http.Client, log *slog.Logger, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	log.WarnContext(ctx, "retrying request", slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryDelay):
	}
	return client.Do(req)
}

// retryDelay is a variable so tests can shorten it.
var retryDelay = 500 * time.Millisecond
