// Package calendar generates the canonical, fixed set of day records for a
// trip. Generation is pure: the same plan always yields the same days.
package calendar

import (
	"fmt"
	"time"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

// Rule assigns descriptive defaults to a date range. Empty fields leave the
// value inherited from the plan's base rule untouched.
type Rule struct {
	From  time.Time
	To    time.Time
	Title string
	City  string
	Icon  string
	Notes string
}

// Plan describes a trip: its inclusive date range, the base rule applied to
// every day, and sub-range override rules in priority order (first wins).
type Plan struct {
	Start time.Time
	End   time.Time
	Base  Rule
	Rules []Rule
}

// covers reports whether the rule applies to day. A rule with a zero To
// covers only its From date.
func (r Rule) covers(day time.Time) bool {
	to := r.To
	if to.IsZero() {
		to = r.From
	}
	return !day.Before(truncate(r.From)) && !day.After(truncate(to))
}

// Generate returns one draft day record per date from plan.Start through
// plan.End inclusive, in date order. Returns domain.ErrValidation if the
// range is empty or reversed.
func Generate(plan Plan) ([]domain.DayRecord, error) {
	start, end := truncate(plan.Start), truncate(plan.End)
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", domain.ErrValidation)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
	}

	days := make([]domain.DayRecord, 0, DayCount(start, end))
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, plan.dayFor(d))
	}
	return days, nil
}

// DayCount returns the number of calendar days from start to end inclusive.
func DayCount(start, end time.Time) int {
	// Both values are UTC midnights, so the division is exact.
	return int(truncate(end).Sub(truncate(start)).Hours()/24) + 1
}

func (p Plan) dayFor(d time.Time) domain.DayRecord {
	day := domain.DayRecord{
		ID:        domain.DayID(d),
		Date:      d,
		DayOfWeek: d.Weekday().String(),
		Title:     p.Base.Title,
		City:      p.Base.City,
		Icon:      p.Base.Icon,
		Notes:     p.Base.Notes,
		Locations: []domain.Location{},
	}
	for _, r := range p.Rules {
		if !r.covers(d) {
			continue
		}
		if r.Title != "" {
			day.Title = r.Title
		}
		if r.City != "" {
			day.City = r.City
		}
		if r.Icon != "" {
			day.Icon = r.Icon
		}
		if r.Notes != "" {
			day.Notes = r.Notes
		}
		break
	}
	return day
}

// truncate reduces t to its calendar date at UTC midnight. Calendar dates are
// compared as dates only so time zones and DST never change the day count.
func truncate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
