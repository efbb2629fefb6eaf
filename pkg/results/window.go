package results

import (
	"time"

	"github.com/beaconhq/beacon-go/pkg/query"
)

// normalizeWindow converts a spec's possibly-relative time bounds into one
// fixed absolute [start, end) pair. It runs once per materialization; every
// page reuses the same pair so the logical result set cannot shift while
// pagination is in progress.
func normalizeWindow(spec *query.Spec, now time.Time, defaultWindow time.Duration) (time.Time, time.Time) {
	d := spec.TimeRange
	if d <= 0 {
		d = defaultWindow
	}
	switch {
	case spec.StartTime != nil && spec.EndTime != nil:
		return *spec.StartTime, *spec.EndTime
	case spec.StartTime != nil:
		return *spec.StartTime, spec.StartTime.Add(d)
	case spec.EndTime != nil:
		return spec.EndTime.Add(-d), *spec.EndTime
	default:
		return now.Add(-d), now
	}
}
