package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hollyburn/rentflow/internal/engine"
)

func generateCmd() *cobra.Command {
	var (
		fromDate  string
		lookahead int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Materialize upcoming expected occurrences",
		Long: `Expand every active template into dated expected occurrences over the
lookahead window. Safe to run daily; occurrences already materialized are
never duplicated.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			from, err := parseDateFlag(fromDate)
			if err != nil {
				return err
			}

			config := engine.DefaultConfig()
			config.LookaheadDays = lookahead
			eng := engine.NewWithConfig(store, config)
			eng.SetProgressWriter(os.Stderr)

			stats, err := eng.GenerateSchedules(ctx, currentOwner(), from)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			fmt.Printf("Generated %d new occurrences from %d templates in %s\n",
				stats.NewOccurrences, stats.Templates, stats.Duration.Round(time.Millisecond))

			return nil
		},
	}

	cmd.Flags().StringVar(&fromDate, "from", "", "window start (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&lookahead, "lookahead", 90, "days to look ahead")

	return cmd
}
