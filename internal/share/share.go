// Package share builds and serves the redacted, token-addressed public copy
// of an owner's itinerary.
package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/metrics"
	"github.com/jayt-piggie/my-trip-planner/internal/repo"
)

// Builder writes share snapshots for owners and reads them for viewers.
type Builder struct {
	store   repo.Store
	tokens  TokenSource
	cache   Cache
	metrics metrics.Provider
	log     *slog.Logger

	// gen counts shares per token. A read fills the cache only if no share
	// of its token landed while it was reading the store.
	mu  sync.Mutex
	gen map[string]uint64
}

// NewBuilder constructs a Builder.
func NewBuilder(store repo.Store, tokens TokenSource, cache Cache, m metrics.Provider, log *slog.Logger) *Builder {
	return &Builder{
		store:   store,
		tokens:  tokens,
		cache:   cache,
		metrics: m,
		log:     log.With("component", "share"),
		gen:     map[string]uint64{},
	}
}

// Share publishes the redacted form of days under the owner's share token
// and returns the token. The first share mints a token and records it for
// the owner; later shares reuse it and overwrite the snapshot in place.
// days itself is never modified.
func (b *Builder) Share(ctx context.Context, owner string, days []domain.DayRecord) (string, error) {
	token, err := b.tokenFor(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("share.Builder.Share: %w", err)
	}

	public := Redact(days)
	if err := b.store.PutSnapshot(ctx, owner, token, public); err != nil {
		return "", fmt.Errorf("share.Builder.Share: %w", err)
	}

	// The next viewer read repopulates from the store.
	b.mu.Lock()
	b.gen[token]++
	b.cache.Del(token)
	b.mu.Unlock()

	b.log.InfoContext(ctx, "snapshot shared", "days", len(public))
	return token, nil
}

func (b *Builder) tokenFor(ctx context.Context, owner string) (string, error) {
	token, err := b.store.GetShareToken(ctx, owner)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	token, err = b.tokens.NewToken()
	if err != nil {
		return "", fmt.Errorf("%w: mint token: %w", domain.ErrTransport, err)
	}
	if err := b.store.SetShareToken(ctx, owner, token); err != nil {
		return "", err
	}
	return token, nil
}

// Snapshot returns the snapshot stored under token.
// Returns domain.ErrNotFound when no snapshot exists for the token.
func (b *Builder) Snapshot(ctx context.Context, token string) (domain.Snapshot, error) {
	if raw, ok := b.cache.Get(token); ok {
		var snap domain.Snapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			b.metrics.IncCacheHits()
			return snap, nil
		}
	}
	b.metrics.IncCacheMisses()

	b.mu.Lock()
	gen := b.gen[token]
	b.mu.Unlock()

	snap, err := b.store.GetSnapshot(ctx, token)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("share.Builder.Snapshot: %w", err)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		b.log.WarnContext(ctx, "encode snapshot for cache", "error", err)
		return snap, nil
	}
	b.mu.Lock()
	if b.gen[token] == gen {
		b.cache.Set(token, raw)
	}
	b.mu.Unlock()
	return snap, nil
}
