package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollyburn/rentflow/internal/engine"
)

func missedCmd() *cobra.Command {
	var asOfDate string

	cmd := &cobra.Command{
		Use:   "missed",
		Short: "Flag overdue occurrences as missed",
		Long: `Mark pending occurrences missed once they are overdue past their
template's grace period. A missed occurrence can still be reconciled later
when a late payment arrives.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			asOf, err := parseDateFlag(asOfDate)
			if err != nil {
				return err
			}

			eng := engine.New(store)
			missed, err := eng.FlagMissed(ctx, currentOwner(), asOf)
			if err != nil {
				return fmt.Errorf("missed scan failed: %w", err)
			}

			if len(missed) == 0 {
				fmt.Println("Nothing newly missed.")
				return nil
			}

			fmt.Printf("Flagged %d missed occurrences:\n", len(missed))
			for _, m := range missed {
				fmt.Printf("  %s  %d days overdue\n", shortID(m.OccurrenceID), m.DaysOverdue)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&asOfDate, "as-of", "", "evaluate as of this date (YYYY-MM-DD, default today)")

	return cmd
}
