package share

import (
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

const productID = "-//my-trip-planner//share//EN"

// ICS renders a snapshot as an iCalendar document with one all-day event per
// day. Only published days carry a description, photo link and places.
func ICS(snap domain.Snapshot) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Trip itinerary")

	for _, d := range snap.Days {
		ev := cal.AddEvent(fmt.Sprintf("%s-%s@my-trip-planner", snap.Token, d.ID))
		ev.SetDtStampTime(snap.UpdatedAt)
		ev.SetAllDayStartAt(d.Date)
		ev.SetAllDayEndAt(d.Date.AddDate(0, 0, 1))
		ev.SetSummary(strings.TrimSpace(d.Icon + " " + d.Title))
		if d.City != "" {
			ev.SetLocation(d.City)
		}
		if !d.IsPublished {
			continue
		}
		if desc := describe(d); desc != "" {
			ev.SetDescription(desc)
		}
		if d.PhotoURL != "" {
			ev.SetURL(d.PhotoURL)
		}
	}
	return cal.Serialize()
}

func describe(d domain.DayRecord) string {
	var b strings.Builder
	b.WriteString(d.Notes)
	if len(d.Locations) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		names := make([]string, len(d.Locations))
		for i, l := range d.Locations {
			names[i] = l.Name
		}
		b.WriteString("Places: " + strings.Join(names, ", "))
	}
	return b.String()
}
