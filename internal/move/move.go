// Package move swaps the editable content of two days of an itinerary as a
// single all-or-nothing store write.
package move

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/repo"
)

// Coordinator performs move transactions against a Store.
type Coordinator struct {
	store repo.Store
	log   *slog.Logger
}

// NewCoordinator constructs a Coordinator backed by store.
func NewCoordinator(store repo.Store, log *slog.Logger) *Coordinator {
	return &Coordinator{store: store, log: log.With("component", "move")}
}

// Plan validates a move of sourceID's content to targetID (and back) against
// the itinerary and returns the two records as they will be after the swap.
// It performs no I/O.
// Returns domain.ErrInvalidReference if either id is missing or both are equal.
func Plan(it domain.Itinerary, sourceID, targetID string) (source, target domain.DayRecord, err error) {
	if sourceID == targetID {
		return source, target, fmt.Errorf("%w: cannot move day %q onto itself", domain.ErrInvalidReference, sourceID)
	}
	src, ok := it.Find(sourceID)
	if !ok {
		return source, target, fmt.Errorf("%w: source day %q does not exist", domain.ErrInvalidReference, sourceID)
	}
	dst, ok := it.Find(targetID)
	if !ok {
		return source, target, fmt.Errorf("%w: target day %q does not exist", domain.ErrInvalidReference, targetID)
	}
	source, target = Swap(src, dst)
	return source, target, nil
}

// Swap exchanges the notes, photo, locations and publish flag of a and b.
// Id, date, weekday, title, city and icon stay with their record.
func Swap(a, b domain.DayRecord) (domain.DayRecord, domain.DayRecord) {
	na := a.WithContent(b.Content())
	nb := b.WithContent(a.Content())
	na.IsPublished, nb.IsPublished = b.IsPublished, a.IsPublished
	return na.Clone(), nb.Clone()
}

// Move swaps the content of sourceID and targetID for owner and returns the
// two records exactly as persisted. Validation happens before any I/O.
// The move is refused when the store cannot write both records atomically,
// and on any store failure neither record is returned, so callers never
// apply half a swap.
func (c *Coordinator) Move(ctx context.Context, owner string, it domain.Itinerary, sourceID, targetID string) ([2]domain.DayRecord, error) {
	source, target, err := Plan(it, sourceID, targetID)
	if err != nil {
		return [2]domain.DayRecord{}, fmt.Errorf("move.Coordinator.Move: %w", err)
	}
	if !c.store.AtomicBatch() {
		return [2]domain.DayRecord{}, fmt.Errorf("move.Coordinator.Move: %w: store cannot write both days atomically", domain.ErrTransport)
	}

	if err := c.store.PutAll(ctx, owner, []domain.DayRecord{source, target}); err != nil {
		c.log.WarnContext(ctx, "move failed",
			"source", sourceID,
			"target", targetID,
			"error", err,
		)
		return [2]domain.DayRecord{}, fmt.Errorf("move.Coordinator.Move: %w", err)
	}

	c.log.DebugContext(ctx, "move committed", "source", sourceID, "target", targetID)
	return [2]domain.DayRecord{source, target}, nil
}
