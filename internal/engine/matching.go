package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hollyburn/rentflow/internal/model"
	"github.com/hollyburn/rentflow/internal/recon"
	"github.com/hollyburn/rentflow/internal/service"
)

// MatchSuggestion pairs a still-unreconciled occurrence with its candidate
// transactions, best first, for manual review.
type MatchSuggestion struct {
	Occurrence model.ExpectedOccurrence
	Template   model.RecurringTemplate
	Matches    []recon.Match
}

// RunMatching scans the owner's pending occurrences against unmatched
// transactions. Top-ranked high-confidence matches are applied immediately
// when autoApply is set; everything else comes back as suggestions. Each
// transaction is claimed by at most one occurrence per run, earliest due
// date first.
func (e *ForecastEngine) RunMatching(ctx context.Context, ownerID string, autoApply bool) (*service.MatchingStats, []MatchSuggestion, error) {
	start := time.Now()

	pending, err := e.storage.GetOccurrences(ctx, service.OccurrenceFilter{
		OwnerID:  ownerID,
		Statuses: []model.OccurrenceStatus{model.OccurrencePending},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load pending occurrences: %w", err)
	}

	candidates, err := e.storage.GetTransactions(ctx, service.TransactionFilter{
		OwnerID:       ownerID,
		UnmatchedOnly: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load unmatched transactions: %w", err)
	}

	slog.Info("Starting reconciliation matching",
		"owner", ownerID,
		"pending_occurrences", len(pending),
		"candidate_transactions", len(candidates),
		"auto_apply", autoApply)

	bar := e.newProgressBar(len(pending), "Matching occurrences...")

	templates := make(map[string]*model.RecurringTemplate)
	claimed := make(map[string]bool)
	stats := &service.MatchingStats{Scanned: len(pending)}
	var suggestions []MatchSuggestion

	for _, occ := range pending {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		_ = bar.Add(1)

		tmpl, tmplErr := e.templateFor(ctx, templates, occ.TemplateID)
		if tmplErr != nil {
			return nil, nil, tmplErr
		}

		available := make([]model.Transaction, 0, len(candidates))
		for _, txn := range candidates {
			if !claimed[txn.ID] {
				available = append(available, txn)
			}
		}

		matches := recon.FindMatches(occ, available, tmpl.AmountTolerance, tmpl.DateToleranceDays)
		if len(matches) == 0 {
			stats.Unmatched++
			continue
		}

		best := matches[0]
		if autoApply && best.Confidence == recon.ConfidenceHigh {
			txnID := best.Transaction.ID
			if applyErr := e.storage.TransitionOccurrence(ctx, occ.ID, model.OccurrenceMatched, &txnID); applyErr != nil {
				return nil, nil, fmt.Errorf("failed to match occurrence %s: %w", occ.ID, applyErr)
			}
			claimed[txnID] = true
			stats.AutoMatched++
			slog.Debug("Auto-matched occurrence",
				"occurrence", occ.ID,
				"transaction", txnID,
				"date_diff_days", best.DateDiffDays,
				"amount_diff", best.AmountDiff)
			continue
		}

		suggestions = append(suggestions, MatchSuggestion{
			Occurrence: occ,
			Template:   *tmpl,
			Matches:    matches,
		})
		stats.Suggested++
	}

	stats.Duration = time.Since(start)
	slog.Info("Reconciliation matching complete",
		"auto_matched", stats.AutoMatched,
		"suggested", stats.Suggested,
		"unmatched", stats.Unmatched,
		"duration", stats.Duration)

	return stats, suggestions, nil
}

// ConfirmMatch applies a reviewed suggestion. The occurrence may be pending
// or already flagged missed; the lifecycle check in storage rejects anything
// else.
func (e *ForecastEngine) ConfirmMatch(ctx context.Context, occurrenceID, transactionID string) error {
	if err := e.storage.TransitionOccurrence(ctx, occurrenceID, model.OccurrenceMatched, &transactionID); err != nil {
		return fmt.Errorf("failed to confirm match: %w", err)
	}
	slog.Info("Match confirmed", "occurrence", occurrenceID, "transaction", transactionID)
	return nil
}

// SkipOccurrence marks an occurrence as intentionally unfulfilled, for
// example a waived fee or a rent-free week.
func (e *ForecastEngine) SkipOccurrence(ctx context.Context, occurrenceID string) error {
	if err := e.storage.TransitionOccurrence(ctx, occurrenceID, model.OccurrenceSkipped, nil); err != nil {
		return fmt.Errorf("failed to skip occurrence: %w", err)
	}
	slog.Info("Occurrence skipped", "occurrence", occurrenceID)
	return nil
}

func (e *ForecastEngine) templateFor(ctx context.Context, cache map[string]*model.RecurringTemplate, id string) (*model.RecurringTemplate, error) {
	if tmpl, ok := cache[id]; ok {
		return tmpl, nil
	}
	tmpl, err := e.storage.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", id, err)
	}
	cache[id] = tmpl
	return tmpl, nil
}
