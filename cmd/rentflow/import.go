package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hollyburn/rentflow/internal/ofx"
	"github.com/hollyburn/rentflow/internal/plaid"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import ledger transactions",
		Long:  `Import transactions from OFX/QFX bank exports or directly from Plaid.`,
	}

	cmd.AddCommand(importOFXCmd())
	cmd.AddCommand(importPlaidCmd())

	return cmd
}

func importOFXCmd() *cobra.Command {
	var property string

	cmd := &cobra.Command{
		Use:   "ofx <file>...",
		Short: "Import OFX/QFX files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			opts := ofx.ImportOptions{OwnerID: currentOwner()}
			if property != "" {
				opts.PropertyID = &property
			}

			parser := ofx.NewParser()
			total := 0
			for _, path := range args {
				file, openErr := os.Open(path)
				if openErr != nil {
					return fmt.Errorf("failed to open %s: %w", path, openErr)
				}

				transactions, parseErr := parser.ParseFile(ctx, file, opts)
				_ = file.Close()
				if parseErr != nil {
					return fmt.Errorf("failed to parse %s: %w", path, parseErr)
				}

				if len(transactions) == 0 {
					continue
				}
				if saveErr := store.SaveTransactions(ctx, transactions); saveErr != nil {
					return fmt.Errorf("failed to save transactions from %s: %w", path, saveErr)
				}
				total += len(transactions)
			}

			fmt.Printf("Imported %d transactions from %d files\n", total, len(args))
			return nil
		},
	}

	cmd.Flags().StringVar(&property, "property", "", "property the statement's account belongs to")

	return cmd
}

func importPlaidCmd() *cobra.Command {
	var (
		property string
		fromDate string
		toDate   string
	)

	cmd := &cobra.Command{
		Use:   "plaid",
		Short: "Pull transactions from Plaid",
		Long: `Fetch transactions via the Plaid API. Credentials come from config or
environment (RENTFLOW_PLAID_CLIENT_ID, RENTFLOW_PLAID_SECRET,
RENTFLOW_PLAID_ACCESS_TOKEN).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cfg := plaid.Config{
				ClientID:    viper.GetString("plaid.client_id"),
				Secret:      viper.GetString("plaid.secret"),
				Environment: viper.GetString("plaid.environment"),
				AccessToken: viper.GetString("plaid.access_token"),
			}
			if cfg.Environment == "" {
				cfg.Environment = "production"
			}

			client, err := plaid.NewClient(cfg)
			if err != nil {
				return err
			}

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

			opts := plaid.FetchOptions{OwnerID: currentOwner()}
			if property != "" {
				opts.PropertyID = &property
			}

			transactions, err := client.GetTransactions(ctx, opts, start, end)
			if err != nil {
				return fmt.Errorf("plaid fetch failed: %w", err)
			}

			if len(transactions) > 0 {
				if err := store.SaveTransactions(ctx, transactions); err != nil {
					return fmt.Errorf("failed to save transactions: %w", err)
				}
			}

			fmt.Printf("Imported %d transactions (%s to %s)\n",
				len(transactions),
				start.Format(time.DateOnly),
				end.Format(time.DateOnly))
			return nil
		},
	}

	cmd.Flags().StringVar(&property, "property", "", "property the account belongs to")
	cmd.Flags().StringVar(&fromDate, "from", "", "fetch window start (YYYY-MM-DD, default one month back)")
	cmd.Flags().StringVar(&toDate, "to", "", "fetch window end (YYYY-MM-DD, default today)")

	return cmd
}
