package extract

import (
	"strings"

	"reservation-monitor-backend/internal/model"
	"reservation-monitor-backend/internal/normalize"
)

// FilterByTime keeps only records whose slot falls inside the allowed time
// window. Upstream time strings are not guaranteed to be pre-normalized, so
// the canonical form is re-derived here; records without any time-like
// substring get a second, lenient pass that accepts an allowed value
// appearing verbatim in the raw text. Diagnostic records pass through
// untouched so a failed date still surfaces in the result set.
func FilterByTime(records []model.Reservation, allowed []string) []model.Reservation {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}

	filtered := make([]model.Reservation, 0, len(records))
	for _, rec := range records {
		if rec.Status.Diagnostic() {
			filtered = append(filtered, rec)
			continue
		}
		if rec.Time == "" {
			continue
		}
		if canonical, ok := normalize.CanonicalTime(rec.Time); ok {
			if _, allowed := allowedSet[canonical]; allowed {
				rec.Time = canonical
				filtered = append(filtered, rec)
			}
			continue
		}
		for a := range allowedSet {
			if strings.Contains(rec.Time, a) {
				filtered = append(filtered, rec)
				break
			}
		}
	}
	return filtered
}
