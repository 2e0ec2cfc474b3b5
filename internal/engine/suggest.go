package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/hollyburn/rentflow/internal/model"
	"github.com/hollyburn/rentflow/internal/pattern"
	"github.com/hollyburn/rentflow/internal/service"
)

// SuggestTemplates mines the owner's transaction history for recurring
// signatures not already covered by a template. Patterns below the
// configured confidence floor, and patterns that duplicate an existing
// template, are filtered out.
func (e *ForecastEngine) SuggestTemplates(ctx context.Context, ownerID string, asOf time.Time) ([]model.DetectedPattern, error) {
	if asOf.IsZero() {
		asOf = today()
	}
	windowStart := asOf.AddDate(0, 0, -e.config.HistoryLookbackDays)

	history, err := e.storage.GetTransactions(ctx, service.TransactionFilter{
		OwnerID:   ownerID,
		StartDate: &windowStart,
		EndDate:   &asOf,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction history: %w", err)
	}

	existing, err := e.storage.ListTemplates(ctx, ownerID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	detected := pattern.DetectPatterns(history)

	suggestions := make([]model.DetectedPattern, 0, len(detected))
	for _, p := range detected {
		if p.Confidence < e.config.SuggestionConfidence {
			continue
		}
		if e.coveredByTemplate(p, existing) {
			continue
		}
		suggestions = append(suggestions, p)
	}

	slog.Info("Template suggestion scan complete",
		"owner", ownerID,
		"history_transactions", len(history),
		"patterns_detected", len(detected),
		"suggestions", len(suggestions))

	return suggestions, nil
}

// MaterializePattern promotes an accepted suggestion into an active
// template. The most recent contributing transaction supplies the anchor,
// the start date, and the money direction.
func (e *ForecastEngine) MaterializePattern(ctx context.Context, ownerID string, p model.DetectedPattern) (*model.RecurringTemplate, error) {
	if len(p.TransactionIDs) == 0 {
		return nil, fmt.Errorf("pattern has no contributing transactions")
	}

	latest, err := e.storage.GetTransaction(ctx, p.TransactionIDs[len(p.TransactionIDs)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to load anchor transaction: %w", err)
	}

	direction := model.DirectionExpense
	if latest.Amount > 0 {
		direction = model.DirectionIncome
	}

	propertyID := p.PropertyID
	tmpl := &model.RecurringTemplate{
		OwnerID:     ownerID,
		PropertyID:  &propertyID,
		Description: p.Description,
		Category:    p.Category,
		Direction:   direction,
		Frequency:   p.Frequency,
		Amount:      p.Amount,
		StartDate:   latest.Date,
		IsActive:    true,
	}
	if p.Frequency.WeekBased() {
		dow := int(latest.Date.Weekday())
		tmpl.AnchorDayOfWeek = &dow
	} else {
		dom := latest.Date.Day()
		tmpl.AnchorDayOfMonth = &dom
	}

	if err := e.storage.CreateTemplate(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("failed to create template from pattern: %w", err)
	}

	slog.Info("Pattern promoted to template",
		"template", tmpl.ID,
		"property", p.PropertyID,
		"category", p.Category,
		"frequency", string(p.Frequency))

	return tmpl, nil
}

// coveredByTemplate reports whether an existing template already tracks this
// pattern: same property and category, with a description close enough that
// suggesting it again would be noise.
func (e *ForecastEngine) coveredByTemplate(p model.DetectedPattern, templates []model.RecurringTemplate) bool {
	for _, tmpl := range templates {
		if tmpl.PropertyID == nil || *tmpl.PropertyID != p.PropertyID {
			continue
		}
		if tmpl.Category != p.Category {
			continue
		}
		if descriptionsSimilar(tmpl.Description, p.Description, e.config.DescriptionDriftRatio) {
			return true
		}
	}
	return false
}

// descriptionsSimilar compares bank descriptions case-insensitively with a
// normalized edit distance, so "RENT PAYMENT 12 HARBOUR" and "Rent payment
// 12 Harbour St" count as the same obligation.
func descriptionsSimilar(a, b string, maxDriftRatio float64) bool {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return true
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(dist)/float64(longest) < maxDriftRatio
}
