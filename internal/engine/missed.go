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

// FlagMissed marks the owner's pending occurrences missed once they are
// overdue past their template's grace period, and returns what was flagged.
// Occurrences already missed keep their status; a late payment still
// reconciles them through ConfirmMatch.
func (e *ForecastEngine) FlagMissed(ctx context.Context, ownerID string, asOf time.Time) ([]recon.MissedOccurrence, error) {
	if asOf.IsZero() {
		asOf = today()
	}

	cutoff := asOf
	pending, err := e.storage.GetOccurrences(ctx, service.OccurrenceFilter{
		OwnerID:   ownerID,
		Statuses:  []model.OccurrenceStatus{model.OccurrencePending},
		DueBefore: &cutoff,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load pending occurrences: %w", err)
	}

	templates := make(map[string]*model.RecurringTemplate)
	entries := make([]recon.AlertDelay, 0, len(pending))
	for _, occ := range pending {
		tmpl, tmplErr := e.templateFor(ctx, templates, occ.TemplateID)
		if tmplErr != nil {
			return nil, tmplErr
		}
		entries = append(entries, recon.AlertDelay{
			Occurrence:     occ,
			AlertDelayDays: tmpl.AlertDelayDays,
		})
	}

	missed := recon.FindMissed(entries, asOf)
	for _, m := range missed {
		if err := e.storage.TransitionOccurrence(ctx, m.OccurrenceID, model.OccurrenceMissed, nil); err != nil {
			return nil, fmt.Errorf("failed to flag occurrence %s: %w", m.OccurrenceID, err)
		}
		slog.Warn("Occurrence missed",
			"occurrence", m.OccurrenceID,
			"days_overdue", m.DaysOverdue)
	}

	slog.Info("Missed occurrence scan complete",
		"owner", ownerID,
		"scanned", len(pending),
		"flagged", len(missed))

	return missed, nil
}
