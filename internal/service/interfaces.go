// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/hollyburn/rentflow/internal/model"
)

// OccurrenceFilter defines filtering options for occurrence queries.
type OccurrenceFilter struct {
	DueBefore  *time.Time
	DueAfter   *time.Time
	TemplateID string
	OwnerID    string
	Statuses   []model.OccurrenceStatus
}

// TransactionFilter defines filtering options for ledger transaction queries.
type TransactionFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	PropertyID    *string
	OwnerID       string
	UnmatchedOnly bool
	Limit         int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Template operations
	CreateTemplate(ctx context.Context, tmpl *model.RecurringTemplate) error
	GetTemplate(ctx context.Context, id string) (*model.RecurringTemplate, error)
	ListTemplates(ctx context.Context, ownerID string, activeOnly bool) ([]model.RecurringTemplate, error)
	UpdateTemplate(ctx context.Context, tmpl *model.RecurringTemplate) error
	SetTemplateActive(ctx context.Context, id string, active bool) error

	// Occurrence operations
	SaveOccurrences(ctx context.Context, occurrences []model.ExpectedOccurrence) error
	GetOccurrence(ctx context.Context, id string) (*model.ExpectedOccurrence, error)
	GetOccurrences(ctx context.Context, filter OccurrenceFilter) ([]model.ExpectedOccurrence, error)
	GetMaterializedDates(ctx context.Context, templateID string) (map[time.Time]bool, error)
	TransitionOccurrence(ctx context.Context, id string, next model.OccurrenceStatus, matchedTransactionID *string) error

	// Ledger transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	SaveOccurrences(ctx context.Context, occurrences []model.ExpectedOccurrence) error
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
}

// RetryOptions configures retry behavior for remote calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// GenerationStats shows the results of a schedule generation run.
type GenerationStats struct {
	Templates      int
	NewOccurrences int
	Skipped        int
	Duration       time.Duration
}

// MatchingStats shows the results of a reconciliation matching run.
type MatchingStats struct {
	Scanned     int
	AutoMatched int
	Suggested   int
	Unmatched   int
	Duration    time.Duration
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ReconciliationSummary contains aggregate information for report export.
type ReconciliationSummary struct {
	DateRange   DateRange
	ByStatus    map[model.OccurrenceStatus]int
	ByCategory  map[string]CategorySummary
	TotalAmount float64
}

// CategorySummary contains aggregated statistics for a category.
type CategorySummary struct {
	Count  int
	Amount float64
}
