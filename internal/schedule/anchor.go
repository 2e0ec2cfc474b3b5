// Package schedule expands recurring templates into concrete occurrence
// dates. All functions are pure: they read their arguments and return new
// values, so callers may invoke them concurrently without locking.
package schedule

import (
	"fmt"
	"time"

	"github.com/hollyburn/rentflow/internal/model"
)

// Anchor pins a recurrence within its period: a weekday for weekly and
// fortnightly templates, a day of month for everything else.
type Anchor struct {
	DayOfWeek  *int // 0 (Sunday) - 6 (Saturday)
	DayOfMonth *int // 1-31, clamped to the target month's length
}

// DateOnly truncates a timestamp to midnight UTC. Occurrence dates carry no
// time-of-day component, so every comparison in this package happens on
// normalized values.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextAnchorDate returns the earliest date on or after onOrAfter that
// satisfies the anchor for the given frequency. start seeds the recurrence
// lattice: fortnightly dates lie 14 days apart from the first anchor weekday
// on or after start, and month-based dates step whole periods from start's
// calendar month. Day-of-month anchors clamp to the last day of short months
// rather than rolling into the next month.
func NextAnchorDate(freq model.Frequency, anchor Anchor, start, onOrAfter time.Time) (time.Time, error) {
	start = DateOnly(start)
	onOrAfter = DateOnly(onOrAfter)

	switch freq {
	case model.FrequencyWeekly:
		if anchor.DayOfWeek == nil {
			return time.Time{}, fmt.Errorf("weekly recurrence requires a day-of-week anchor")
		}
		return nextWeekday(onOrAfter, *anchor.DayOfWeek), nil

	case model.FrequencyFortnightly:
		if anchor.DayOfWeek == nil {
			return time.Time{}, fmt.Errorf("fortnightly recurrence requires a day-of-week anchor")
		}
		seed := nextWeekday(start, *anchor.DayOfWeek)
		if !onOrAfter.After(seed) {
			return seed, nil
		}
		// Round the gap up to the 14-day lattice.
		gap := int(onOrAfter.Sub(seed).Hours() / 24)
		periods := gap / 14
		if gap%14 != 0 {
			periods++
		}
		return seed.AddDate(0, 0, periods*14), nil

	case model.FrequencyMonthly, model.FrequencyQuarterly, model.FrequencyAnnually:
		if anchor.DayOfMonth == nil {
			return time.Time{}, fmt.Errorf("%s recurrence requires a day-of-month anchor", freq)
		}
		return nextMonthAnchor(freq.Months(), *anchor.DayOfMonth, start, onOrAfter), nil

	default:
		return time.Time{}, fmt.Errorf("%w: %q", model.ErrInvalidFrequency, string(freq))
	}
}

// nextWeekday returns the earliest date >= from whose weekday equals dow.
func nextWeekday(from time.Time, dow int) time.Time {
	offset := (dow - int(from.Weekday()) + 7) % 7
	return from.AddDate(0, 0, offset)
}

// nextMonthAnchor walks the month lattice seeded at start's calendar month,
// stepping monthStep months, and returns the first clamped anchor day that
// falls on or after onOrAfter.
func nextMonthAnchor(monthStep, day int, start, onOrAfter time.Time) time.Time {
	// Jump close to the target before scanning so far-future queries do not
	// walk one period at a time.
	months := monthsBetween(start, onOrAfter)
	periods := months / monthStep
	if periods > 0 {
		periods--
	}

	for {
		candidate := clampedDayInMonth(start.Year(), int(start.Month())+periods*monthStep, day)
		if !candidate.Before(onOrAfter) {
			return candidate
		}
		periods++
	}
}

// clampedDayInMonth places day within the given calendar month, clamping to
// the last valid day (31st in a 30-day month, 29/30/31 in February). month
// may exceed 12; time.Date normalizes the overflow.
func clampedDayInMonth(year, month, day int) time.Time {
	firstOfMonth := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := firstOfMonth.AddDate(0, 1, -1).Day()
	if day > daysInMonth {
		day = daysInMonth
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), day, 0, 0, 0, 0, time.UTC)
}

// monthsBetween returns whole calendar months from a to b, floored at zero.
func monthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if months < 0 {
		return 0
	}
	return months
}
