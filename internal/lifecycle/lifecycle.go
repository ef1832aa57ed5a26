// Package lifecycle implements the Draft/Published state machine of a single
// day. It is pure logic: transitions return new values and never touch the
// store or the session cache.
package lifecycle

import (
	"fmt"
	"math"
	"strings"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

// State is the lifecycle state of a day's content.
type State int

const (
	// Draft content is visible to the owner only.
	Draft State = iota
	// Published content is visible in share snapshots.
	Published
)

func (s State) String() string {
	if s == Published {
		return "published"
	}
	return "draft"
}

// StateOf returns the lifecycle state of day.
func StateOf(day domain.DayRecord) State {
	if day.IsPublished {
		return Published
	}
	return Draft
}

// Publish moves a draft day to Published, replacing its editable content
// with content as one update.
// Returns domain.ErrInvalidTransition if the day is already published and
// domain.ErrValidation if content is invalid.
func Publish(day domain.DayRecord, content domain.DayContent) (domain.DayRecord, error) {
	if StateOf(day) != Draft {
		return domain.DayRecord{}, fmt.Errorf("%w: day %s is already published", domain.ErrInvalidTransition, day.ID)
	}
	if err := ValidateContent(content); err != nil {
		return domain.DayRecord{}, err
	}
	next := day.WithContent(content)
	next.IsPublished = true
	return next.Clone(), nil
}

// Revert moves a published day back to Draft so the owner can edit it again.
// The content is kept as-is.
// Returns domain.ErrInvalidTransition if the day is not published.
func Revert(day domain.DayRecord) (domain.DayRecord, error) {
	if StateOf(day) != Published {
		return domain.DayRecord{}, fmt.Errorf("%w: day %s is not published", domain.ErrInvalidTransition, day.ID)
	}
	next := day.Clone()
	next.IsPublished = false
	return next, nil
}

// ValidateContent enforces the rules on editable content:
//   - location ids are non-empty and unique within the day
//   - location names are non-empty
//   - coordinates are finite and within range
func ValidateContent(c domain.DayContent) error {
	seen := make(map[string]bool, len(c.Locations))
	for i, loc := range c.Locations {
		if strings.TrimSpace(loc.ID) == "" {
			return fmt.Errorf("%w: location %d: id is required", domain.ErrValidation, i)
		}
		if seen[loc.ID] {
			return fmt.Errorf("%w: location id %q is not unique", domain.ErrValidation, loc.ID)
		}
		seen[loc.ID] = true
		if strings.TrimSpace(loc.Name) == "" {
			return fmt.Errorf("%w: location %q: name is required", domain.ErrValidation, loc.ID)
		}
		if !validCoord(loc.Lat, 90) || !validCoord(loc.Lon, 180) {
			return fmt.Errorf("%w: location %q: coordinates out of range", domain.ErrValidation, loc.ID)
		}
	}
	return nil
}

func validCoord(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}
