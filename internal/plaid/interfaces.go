package plaid

import (
	"context"
	"time"

	"github.com/hollyburn/rentflow/internal/model"
)

// TransactionFetcher fetches ledger transactions from a remote provider.
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, opts FetchOptions, startDate, endDate time.Time) ([]model.Transaction, error)
	GetAccounts(ctx context.Context) ([]string, error)
}
