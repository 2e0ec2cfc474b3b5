package schedule

import (
	"time"

	"github.com/hollyburn/rentflow/internal/model"
)

// GenerateDates expands a template into the ordered sequence of occurrence
// dates falling within lookaheadDays of fromDate. The sequence is strictly
// increasing, bounded below by the template's start date and above by both
// the window end and the template's end date. A template whose start lies
// past the window yields an empty slice, not an error.
func GenerateDates(tmpl model.RecurringTemplate, fromDate time.Time, lookaheadDays int) ([]time.Time, error) {
	if !tmpl.Frequency.Valid() {
		return nil, model.ErrInvalidFrequency
	}

	fromDate = DateOnly(fromDate)
	windowEnd := fromDate.AddDate(0, 0, lookaheadDays)
	if tmpl.EndDate != nil {
		if end := DateOnly(*tmpl.EndDate); end.Before(windowEnd) {
			windowEnd = end
		}
	}

	start := DateOnly(tmpl.StartDate)
	cursor := fromDate
	if start.After(cursor) {
		cursor = start
	}

	anchor := Anchor{DayOfWeek: tmpl.AnchorDayOfWeek, DayOfMonth: tmpl.AnchorDayOfMonth}

	var dates []time.Time
	for {
		next, err := NextAnchorDate(tmpl.Frequency, anchor, start, cursor)
		if err != nil {
			return nil, err
		}
		if next.After(windowEnd) {
			break
		}
		if len(dates) == 0 || next.After(dates[len(dates)-1]) {
			dates = append(dates, next)
		}

		if tmpl.Frequency.WeekBased() {
			cursor = next.AddDate(0, 0, tmpl.Frequency.Days())
		} else {
			cursor = next.AddDate(0, 0, 1)
		}
	}

	return dates, nil
}
