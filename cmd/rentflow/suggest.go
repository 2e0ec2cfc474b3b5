package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hollyburn/rentflow/internal/engine"
)

func suggestCmd() *cobra.Command {
	var (
		asOfDate   string
		lookback   int
		minConf    float64
		acceptIdx  int
		acceptFlag bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Mine transaction history for new recurring templates",
		Long: `Detect repeating amount and interval signatures in imported
transactions and propose templates for them. Accept one with --accept N to
start forecasting it.`,
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

			config := engine.DefaultConfig()
			config.HistoryLookbackDays = lookback
			config.SuggestionConfidence = minConf
			eng := engine.NewWithConfig(store, config)

			suggestions, err := eng.SuggestTemplates(ctx, currentOwner(), asOf)
			if err != nil {
				return fmt.Errorf("suggestion scan failed: %w", err)
			}

			if len(suggestions) == 0 {
				fmt.Println("No new recurring patterns found.")
				return nil
			}

			acceptFlag = cmd.Flags().Changed("accept")
			if acceptFlag {
				if acceptIdx < 1 || acceptIdx > len(suggestions) {
					return fmt.Errorf("--accept must be between 1 and %d", len(suggestions))
				}
				tmpl, promoteErr := eng.MaterializePattern(ctx, currentOwner(), suggestions[acceptIdx-1])
				if promoteErr != nil {
					return promoteErr
				}
				fmt.Printf("Created template %s (%s %s, $%.2f)\n",
					shortID(tmpl.ID), tmpl.Frequency, tmpl.Description, tmpl.Amount)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				tableHeaderStyle.Render("#"),
				tableHeaderStyle.Render("Description"),
				tableHeaderStyle.Render("Property"),
				tableHeaderStyle.Render("Frequency"),
				tableHeaderStyle.Render("Amount"),
				tableHeaderStyle.Render("Confidence"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 3),
				strings.Repeat("-", 30),
				strings.Repeat("-", 10),
				strings.Repeat("-", 11),
				strings.Repeat("-", 10),
				strings.Repeat("-", 10))

			for i, s := range suggestions {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t$%.2f\t%.0f%%\n",
					i+1, s.Description, s.PropertyID, s.Frequency, s.Amount, s.Confidence*100)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&asOfDate, "as-of", "", "evaluate as of this date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&lookback, "lookback", 365, "days of history to mine")
	cmd.Flags().Float64Var(&minConf, "min-confidence", 0.7, "minimum pattern confidence")
	cmd.Flags().IntVar(&acceptIdx, "accept", 0, "promote suggestion N into an active template")

	return cmd
}
