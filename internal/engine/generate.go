package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/hollyburn/rentflow/internal/schedule"
	"github.com/hollyburn/rentflow/internal/service"
)

// GenerateSchedules materializes pending occurrences for every active
// template of the owner, looking ahead from fromDate. Dates already
// materialized are skipped, so the operation is safe to re-run daily.
func (e *ForecastEngine) GenerateSchedules(ctx context.Context, ownerID string, fromDate time.Time) (*service.GenerationStats, error) {
	start := time.Now()

	templates, err := e.storage.ListTemplates(ctx, ownerID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	slog.Info("Starting schedule generation",
		"owner", ownerID,
		"templates", len(templates),
		"from_date", fromDate.Format("2006-01-02"),
		"lookahead_days", e.config.LookaheadDays)

	bar := e.newProgressBar(len(templates), "Generating schedules...")

	stats := &service.GenerationStats{Templates: len(templates)}
	for _, tmpl := range templates {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		materialized, datesErr := e.storage.GetMaterializedDates(ctx, tmpl.ID)
		if datesErr != nil {
			return nil, fmt.Errorf("failed to load materialized dates for template %s: %w", tmpl.ID, datesErr)
		}

		occurrences, matErr := schedule.Materialize(tmpl, fromDate, e.config.LookaheadDays, materialized)
		if matErr != nil {
			return nil, fmt.Errorf("failed to materialize template %s: %w", tmpl.ID, matErr)
		}

		if len(occurrences) > 0 {
			if saveErr := e.storage.SaveOccurrences(ctx, occurrences); saveErr != nil {
				return nil, fmt.Errorf("failed to save occurrences for template %s: %w", tmpl.ID, saveErr)
			}
		}

		stats.NewOccurrences += len(occurrences)
		stats.Skipped += len(materialized)
		_ = bar.Add(1)
	}

	stats.Duration = time.Since(start)
	slog.Info("Schedule generation complete",
		"new_occurrences", stats.NewOccurrences,
		"already_materialized", stats.Skipped,
		"duration", stats.Duration)

	return stats, nil
}

func (e *ForecastEngine) newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(e.progress),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
	)
}
