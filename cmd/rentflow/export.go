package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hollyburn/rentflow/internal/engine"
	"github.com/hollyburn/rentflow/internal/model"
	"github.com/hollyburn/rentflow/internal/service"
	"github.com/hollyburn/rentflow/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export reconciliation reports",
	}

	cmd.AddCommand(exportSheetsCmd())

	return cmd
}

func exportSheetsCmd() *cobra.Command {
	var (
		fromDate string
		toDate   string
	)

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Export a reconciliation report to Google Sheets",
		Long: `Build a reconciliation summary for a date range and write it to a
Google Sheets spreadsheet. Credentials come from GOOGLE_SHEETS_* environment
variables (service account key or OAuth2 client with refresh token).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			end, err := parseDateFlag(toDate)
			if err != nil {
				return err
			}
			start := end.AddDate(0, -1, 0)
			if fromDate != "" {
				start, err = parseDateFlag(fromDate)
				if err != nil {
					return err
				}
			}

			owner := currentOwner()
			eng := engine.New(store)

			summary, err := eng.BuildSummary(ctx, owner, service.DateRange{Start: start, End: end})
			if err != nil {
				return fmt.Errorf("failed to build summary: %w", err)
			}

			occurrences, err := store.GetOccurrences(ctx, service.OccurrenceFilter{
				OwnerID:   owner,
				DueAfter:  &start,
				DueBefore: &end,
			})
			if err != nil {
				return fmt.Errorf("failed to load occurrences: %w", err)
			}

			templates := make(map[string]*model.RecurringTemplate)
			details := make([]sheets.OccurrenceDetail, 0, len(occurrences))
			for _, occ := range occurrences {
				tmpl, ok := templates[occ.TemplateID]
				if !ok {
					tmpl, err = store.GetTemplate(ctx, occ.TemplateID)
					if err != nil {
						return fmt.Errorf("failed to load template %s: %w", occ.TemplateID, err)
					}
					templates[occ.TemplateID] = tmpl
				}
				details = append(details, sheets.OccurrenceDetail{
					Occurrence: occ,
					Template:   *tmpl,
				})
			}

			cfg := sheets.DefaultConfig()
			if err := cfg.LoadFromEnv(); err != nil {
				return err
			}

			writer, err := sheets.NewWriter(ctx, cfg, slog.Default())
			if err != nil {
				return fmt.Errorf("failed to create sheets writer: %w", err)
			}

			if err := writer.Write(ctx, details, summary); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			fmt.Printf("Exported %d occurrences (%s to %s) to %q\n",
				len(details),
				start.Format(time.DateOnly),
				end.Format(time.DateOnly),
				cfg.SpreadsheetName)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromDate, "from", "", "report window start (YYYY-MM-DD, default one month back)")
	cmd.Flags().StringVar(&toDate, "to", "", "report window end (YYYY-MM-DD, default today)")

	return cmd
}
