// Package recon reconciles expected occurrences against ledger transactions
// using tolerance-based fuzzy matching, and flags occurrences that were never
// reconciled within their grace period. Everything here is a pure function.
package recon

import (
	"math"
	"sort"
	"time"

	"github.com/hollyburn/rentflow/internal/model"
)

// Confidence classifies match quality. High-confidence matches are safe to
// apply automatically; medium matches are surfaced for manual confirmation.
type Confidence string

// Confidence tiers, best first.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// highConfidenceDateWindow is the maximum day offset for a high-confidence
// match regardless of the template's broader date tolerance.
const highConfidenceDateWindow = 2

// mediumConfidencePctTolerance is the relative amount tolerance for the
// medium tier.
const mediumConfidencePctTolerance = 0.05

// Match pairs a candidate transaction with its score against one expected
// occurrence.
type Match struct {
	Transaction  model.Transaction
	Confidence   Confidence
	DateDiffDays int
	AmountDiff   float64
}

// FindMatches scores candidates against the expected occurrence and returns
// every candidate within tolerance, best first. Candidates for a different
// property are never considered. The tolerance gate is hard: a transaction
// outside both tiers is excluded, not ranked low, so an empty result means
// "no match yet". Ordering is a deterministic total order (tier, then date
// distance, then transaction ID) so automatic matching is reproducible.
func FindMatches(expected model.ExpectedOccurrence, candidates []model.Transaction, amountTolerance float64, dateToleranceDays int) []Match {
	var matches []Match

	for _, txn := range candidates {
		if !samePropertyScope(expected.PropertyID, txn.PropertyID) {
			continue
		}

		amountDiff := math.Abs(txn.AbsAmount() - expected.Amount)
		dateDiff := absDays(txn.Date, expected.DueDate)

		tier, ok := classify(amountDiff, expected.Amount, dateDiff, amountTolerance, dateToleranceDays)
		if !ok {
			continue
		}

		matches = append(matches, Match{
			Transaction:  txn,
			Confidence:   tier,
			DateDiffDays: dateDiff,
			AmountDiff:   amountDiff,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence == ConfidenceHigh
		}
		if matches[i].DateDiffDays != matches[j].DateDiffDays {
			return matches[i].DateDiffDays < matches[j].DateDiffDays
		}
		return matches[i].Transaction.ID < matches[j].Transaction.ID
	})

	return matches
}

// classify applies the tier bounds. High requires the absolute amount
// tolerance and a tight date window; medium allows a 5% relative amount
// drift within the template's date tolerance.
func classify(amountDiff, expectedAmount float64, dateDiff int, amountTolerance float64, dateToleranceDays int) (Confidence, bool) {
	if amountDiff <= amountTolerance && dateDiff <= highConfidenceDateWindow {
		return ConfidenceHigh, true
	}
	if expectedAmount > 0 && amountDiff/expectedAmount <= mediumConfidencePctTolerance && dateDiff <= dateToleranceDays {
		return ConfidenceMedium, true
	}
	return "", false
}

// samePropertyScope requires exact property equality; a template with no
// property only matches unscoped transactions.
func samePropertyScope(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// absDays returns the absolute difference between two dates in whole
// calendar days, ignoring time of day.
func absDays(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
