package domain

import (
	"slices"
	"time"
)

// Itinerary is the date-ordered collection of all day records of one owner.
type Itinerary []DayRecord

// Index returns the position of the day with the given id, or -1.
func (it Itinerary) Index(id string) int {
	return slices.IndexFunc(it, func(d DayRecord) bool { return d.ID == id })
}

// Find returns the day with the given id.
func (it Itinerary) Find(id string) (DayRecord, bool) {
	i := it.Index(id)
	if i < 0 {
		return DayRecord{}, false
	}
	return it[i], true
}

// IDs returns the day ids in itinerary order.
func (it Itinerary) IDs() []string {
	ids := make([]string, len(it))
	for i, d := range it {
		ids[i] = d.ID
	}
	return ids
}

// Clone returns a deep copy of the itinerary.
func (it Itinerary) Clone() Itinerary {
	out := make(Itinerary, len(it))
	for i, d := range it {
		out[i] = d.Clone()
	}
	return out
}

// SortByDate orders the days by date ascending, in place.
func (it Itinerary) SortByDate() {
	slices.SortStableFunc(it, func(a, b DayRecord) int {
		return a.Date.Compare(b.Date)
	})
}

// Snapshot is the redacted, token-addressed public copy of an itinerary.
// It only changes when the owner shares again.
type Snapshot struct {
	Token     string    `json:"token"`
	Days      Itinerary `json:"days"`
	UpdatedAt time.Time `json:"updated_at"`
}
