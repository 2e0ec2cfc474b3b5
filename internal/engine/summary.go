package engine

import (
	"context"
	"fmt"

	"github.com/hollyburn/rentflow/internal/model"
	"github.com/hollyburn/rentflow/internal/service"
)

// BuildSummary aggregates the owner's occurrences over a date range for
// report export: totals by reconciliation status and by category.
func (e *ForecastEngine) BuildSummary(ctx context.Context, ownerID string, dateRange service.DateRange) (*service.ReconciliationSummary, error) {
	after := dateRange.Start
	before := dateRange.End
	occurrences, err := e.storage.GetOccurrences(ctx, service.OccurrenceFilter{
		OwnerID:   ownerID,
		DueAfter:  &after,
		DueBefore: &before,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load occurrences: %w", err)
	}

	templates := make(map[string]*model.RecurringTemplate)
	summary := &service.ReconciliationSummary{
		DateRange:  dateRange,
		ByStatus:   make(map[model.OccurrenceStatus]int),
		ByCategory: make(map[string]service.CategorySummary),
	}

	for _, occ := range occurrences {
		tmpl, tmplErr := e.templateFor(ctx, templates, occ.TemplateID)
		if tmplErr != nil {
			return nil, tmplErr
		}

		summary.ByStatus[occ.Status]++
		summary.TotalAmount += occ.Amount

		cat := summary.ByCategory[tmpl.Category]
		cat.Count++
		cat.Amount += occ.Amount
		summary.ByCategory[tmpl.Category] = cat
	}

	return summary, nil
}
