package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hollyburn/rentflow/internal/engine"
	"github.com/hollyburn/rentflow/internal/tui"
)

func matchCmd() *cobra.Command {
	var (
		noAuto bool
		review bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Reconcile expected occurrences against imported transactions",
		Long: `Scan pending occurrences for matching transactions. High-confidence
matches are applied automatically; anything ambiguous is reported, or
reviewed interactively with --review.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			eng := engine.New(store)
			eng.SetProgressWriter(os.Stderr)

			stats, suggestions, err := eng.RunMatching(ctx, currentOwner(), !noAuto)
			if err != nil {
				return fmt.Errorf("matching failed: %w", err)
			}

			fmt.Printf("Scanned %d occurrences: %d auto-matched, %d need review, %d unmatched\n",
				stats.Scanned, stats.AutoMatched, stats.Suggested, stats.Unmatched)

			if len(suggestions) == 0 {
				return nil
			}

			if !review {
				for _, s := range suggestions {
					best := s.Matches[0]
					fmt.Printf("  %s  %s $%.2f due %s -> candidate %s (%s, %dd off)\n",
						shortID(s.Occurrence.ID),
						s.Template.Description,
						s.Occurrence.Amount,
						s.Occurrence.DueDate.Format("2006-01-02"),
						best.Transaction.ID,
						best.Confidence,
						best.DateDiffDays)
				}
				fmt.Println("Run 'rentflow match --review' to resolve interactively.")
				return nil
			}

			decisions, err := tui.Review(ctx, suggestions)
			if err != nil {
				return err
			}

			if err := tui.ApplyDecisions(ctx, eng, decisions); err != nil {
				return err
			}

			fmt.Printf("Applied %d review decisions\n", len(decisions))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noAuto, "no-auto", false, "never apply matches automatically")
	cmd.Flags().BoolVar(&review, "review", false, "review ambiguous matches interactively")

	return cmd
}
