package model

import (
	"fmt"
	"time"
)

// OccurrenceStatus tracks the reconciliation state of an expected occurrence.
type OccurrenceStatus string

// Occurrence status constants.
const (
	OccurrencePending OccurrenceStatus = "pending"
	OccurrenceMatched OccurrenceStatus = "matched"
	OccurrenceMissed  OccurrenceStatus = "missed"
	OccurrenceSkipped OccurrenceStatus = "skipped"
)

// allowedTransitions encodes the occurrence lifecycle. A missed occurrence
// may still be matched later when a late payment arrives; matched and
// skipped are terminal.
var allowedTransitions = map[OccurrenceStatus][]OccurrenceStatus{
	OccurrencePending: {OccurrenceMatched, OccurrenceMissed, OccurrenceSkipped},
	OccurrenceMissed:  {OccurrenceMatched, OccurrenceSkipped},
}

// Valid reports whether the status is one of the known values.
func (s OccurrenceStatus) Valid() bool {
	switch s {
	case OccurrencePending, OccurrenceMatched, OccurrenceMissed, OccurrenceSkipped:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s OccurrenceStatus) CanTransitionTo(next OccurrenceStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ExpectedOccurrence is one concrete, dated instance expected from a
// recurring template. Amount is snapshotted at generation time; later
// template edits do not change occurrences already materialized.
type ExpectedOccurrence struct {
	CreatedAt            time.Time
	UpdatedAt            time.Time
	DueDate              time.Time
	PropertyID           *string
	MatchedTransactionID *string
	ID                   string
	TemplateID           string
	OwnerID              string
	Status               OccurrenceStatus
	Amount               float64
}

// TransitionTo moves the occurrence to the next status, enforcing the
// lifecycle. Matching requires a transaction ID; every other transition
// clears it.
func (o *ExpectedOccurrence) TransitionTo(next OccurrenceStatus, matchedTransactionID *string) error {
	if !next.Valid() {
		return fmt.Errorf("unknown occurrence status %q", string(next))
	}
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("illegal occurrence transition %s -> %s", o.Status, next)
	}
	if next == OccurrenceMatched {
		if matchedTransactionID == nil || *matchedTransactionID == "" {
			return fmt.Errorf("matched occurrence requires a transaction ID")
		}
		o.MatchedTransactionID = matchedTransactionID
	} else {
		o.MatchedTransactionID = nil
	}
	o.Status = next
	return nil
}

// DaysOverdue returns whole calendar days elapsed since the due date.
// Negative values mean the occurrence is still in the future.
func (o *ExpectedOccurrence) DaysOverdue(today time.Time) int {
	due := time.Date(o.DueDate.Year(), o.DueDate.Month(), o.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(now.Sub(due).Hours() / 24)
}
