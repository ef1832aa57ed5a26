// Package domain contains the core data types for the trip planner.
// This package has no dependencies on other internal packages and is
// imported by every other internal package (repo, session, handler).
package domain

import (
	"slices"
	"time"
)

// DayIDLayout is the layout of a day id: the day's calendar date.
const DayIDLayout = "2006-01-02"

// Location is a named point of interest attached to a day.
// ID is unique within its day and has no meaning across days.
type Location struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// DayRecord is the unit of storage: one calendar day of an owner's trip.
// ID, Date and DayOfWeek are fixed when the itinerary is seeded and never
// change; moving content between days leaves them in place.
type DayRecord struct {
	ID          string     `json:"id"`
	Date        time.Time  `json:"date"`
	DayOfWeek   string     `json:"day_of_week"`
	Title       string     `json:"title"`
	City        string     `json:"city"`
	Icon        string     `json:"icon"`
	Notes       string     `json:"notes"`
	PhotoURL    string     `json:"photo_url"`
	Locations   []Location `json:"locations"`
	IsPublished bool       `json:"is_published"`
}

// DayContent is the owner-editable content of a day: the part that is
// published, reverted and swapped by a move.
type DayContent struct {
	Notes     string
	PhotoURL  string
	Locations []Location
}

// DayID returns the id of the day record for date.
func DayID(date time.Time) string {
	return date.Format(DayIDLayout)
}

// Content returns a copy of the day's editable content.
func (d DayRecord) Content() DayContent {
	return DayContent{
		Notes:     d.Notes,
		PhotoURL:  d.PhotoURL,
		Locations: slices.Clone(d.Locations),
	}
}

// WithContent returns a copy of d whose editable content is replaced by c.
func (d DayRecord) WithContent(c DayContent) DayRecord {
	d.Notes = c.Notes
	d.PhotoURL = c.PhotoURL
	d.Locations = slices.Clone(c.Locations)
	return d
}

// Clone returns a deep copy of d. Locations is never nil on the copy so
// that encoded records always carry an array.
func (d DayRecord) Clone() DayRecord {
	d.Locations = slices.Clone(d.Locations)
	if d.Locations == nil {
		d.Locations = []Location{}
	}
	return d
}
