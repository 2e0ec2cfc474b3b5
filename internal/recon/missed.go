package recon

import (
	"time"

	"github.com/hollyburn/rentflow/internal/model"
)

// MissedOccurrence pairs an overdue occurrence ID with how late it is.
type MissedOccurrence struct {
	OccurrenceID string
	DaysOverdue  int
}

// AlertDelay supplies the per-template grace period for one occurrence.
type AlertDelay struct {
	Occurrence     model.ExpectedOccurrence
	AlertDelayDays int
}

// FindMissed returns the occurrences still pending more than their grace
// period past the due date. Matched and skipped occurrences are never
// reported regardless of age, and an occurrence already flagged missed is
// not reported again. Idempotent; the caller persists the status change.
func FindMissed(occurrences []AlertDelay, today time.Time) []MissedOccurrence {
	var missed []MissedOccurrence
	for _, entry := range occurrences {
		occ := entry.Occurrence
		if occ.Status != model.OccurrencePending {
			continue
		}
		overdue := occ.DaysOverdue(today)
		if overdue > entry.AlertDelayDays {
			missed = append(missed, MissedOccurrence{
				OccurrenceID: occ.ID,
				DaysOverdue:  overdue,
			})
		}
	}
	return missed
}
