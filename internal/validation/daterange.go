// FilePath: internal/validation/daterange.go
package validation

import (
	"time"

	"github.com/meteosense/hub/internal/errors"
)

// Date range policy bounding aggregation query cost: windows must span at
// least one and at most thirty-one whole days.
const (
	MinRangeDays = 1
	MaxRangeDays = 31

	defaultLookback = 7 * 24 * time.Hour
)

// DateRange is a normalized [start, end] query window
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NormalizeDateRange applies defaults for absent bounds: start falls back to
// seven days before now, end falls back to now.
func NormalizeDateRange(start, end *time.Time, now time.Time) DateRange {
	r := DateRange{Start: now.Add(-defaultLookback), End: now}
	if start != nil {
		r.Start = *start
	}
	if end != nil {
		r.End = *end
	}
	return r
}

// ValidateDateRange enforces the window policy. Checks run in order: start
// not after end, then minimum width, then maximum width. Both the request
// boundary and the query engine call this same function, so the two sites
// cannot drift apart.
func ValidateDateRange(r DateRange) error {
	if r.Start.After(r.End) {
		return errors.NewInvalidRangeError("start date must be before end date")
	}
	days := DaysBetween(r.Start, r.End)
	if days < MinRangeDays {
		return errors.NewRangeTooNarrowError("date range must be at least 1 day")
	}
	if days > MaxRangeDays {
		return errors.NewRangeTooWideError("date range cannot exceed 1 month (31 days)")
	}
	return nil
}

// DaysBetween returns the number of whole 24h periods between start and end
func DaysBetween(start, end time.Time) int64 {
	return int64(end.Sub(start) / (24 * time.Hour))
}
