package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hollyburn/rentflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidOccurrence  = errors.New("invalid occurrence")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of ledger transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.OwnerID == "" {
		return fmt.Errorf("%w: missing owner ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	return nil
}

// validateOccurrences validates a slice of expected occurrences.
func validateOccurrences(occurrences []model.ExpectedOccurrence) error {
	if occurrences == nil {
		return fmt.Errorf("%w: occurrences", ErrNilParameter)
	}
	if len(occurrences) == 0 {
		return fmt.Errorf("%w: occurrences", ErrEmptySlice)
	}

	for i, occ := range occurrences {
		if occ.ID == "" {
			return fmt.Errorf("occurrence at index %d: %w: missing ID", i, ErrInvalidOccurrence)
		}
		if occ.TemplateID == "" {
			return fmt.Errorf("occurrence at index %d: %w: missing template ID", i, ErrInvalidOccurrence)
		}
		if occ.DueDate.IsZero() {
			return fmt.Errorf("occurrence at index %d: %w: missing due date", i, ErrInvalidOccurrence)
		}
		if !occ.Status.Valid() {
			return fmt.Errorf("occurrence at index %d: %w: unknown status %q", i, ErrInvalidOccurrence, string(occ.Status))
		}
	}
	return nil
}
