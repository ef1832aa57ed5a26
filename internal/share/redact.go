package share

import "github.com/jayt-piggie/my-trip-planner/internal/domain"

// Redact returns the public form of days. Published days are copied
// verbatim; every other day keeps its id, date, title, city and icon but
// has its notes, photo and locations cleared. Order and the id set are
// preserved and days is not modified.
func Redact(days []domain.DayRecord) []domain.DayRecord {
	out := make([]domain.DayRecord, len(days))
	for i, d := range days {
		if d.IsPublished {
			out[i] = d.Clone()
			continue
		}
		out[i] = d.WithContent(domain.DayContent{Locations: []domain.Location{}})
		out[i].IsPublished = false
	}
	return out
}
