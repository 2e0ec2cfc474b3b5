package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/hollyburn/rentflow/internal/model"
)

// Materialize converts newly generated dates into pending occurrence
// records, skipping any date already present in materialized. Repeated
// calls with the accumulated date set never duplicate occurrences; the
// caller persists the results. Each occurrence snapshots the template's
// amount so later template edits leave history untouched.
func Materialize(tmpl model.RecurringTemplate, fromDate time.Time, lookaheadDays int, materialized map[time.Time]bool) ([]model.ExpectedOccurrence, error) {
	dates, err := GenerateDates(tmpl, fromDate, lookaheadDays)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	occurrences := make([]model.ExpectedOccurrence, 0, len(dates))
	for _, date := range dates {
		if materialized[DateOnly(date)] {
			continue
		}
		occurrences = append(occurrences, model.ExpectedOccurrence{
			ID:         uuid.NewString(),
			TemplateID: tmpl.ID,
			OwnerID:    tmpl.OwnerID,
			PropertyID: tmpl.PropertyID,
			DueDate:    date,
			Amount:     tmpl.Amount,
			Status:     model.OccurrencePending,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	return occurrences, nil
}
