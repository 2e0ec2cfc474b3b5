package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hollyburn/rentflow/internal/common"
	"github.com/hollyburn/rentflow/internal/model"
	"github.com/hollyburn/rentflow/internal/service"
)

// SaveTransactions saves multiple ledger transactions, deduplicating on
// hash so repeated imports of the same statement are harmless.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveTransactionsTx(ctx, tx, transactions); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, hash, owner_id, property_id, account_id, date,
			amount, category, description
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	saved := 0
	for _, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		result, execErr := stmt.ExecContext(ctx,
			txn.ID, txn.Hash, txn.OwnerID, txn.PropertyID, txn.AccountID,
			txn.Date, txn.Amount, txn.Category, txn.Description,
		)
		if execErr != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, execErr)
		}
		if affected, _ := result.RowsAffected(); affected > 0 {
			saved++
		}
	}

	slog.Info("saved transactions",
		"total", len(transactions),
		"new", saved,
		"duplicates", len(transactions)-saved)
	return nil
}

const transactionColumns = `
	id, hash, owner_id, property_id, account_id, date,
	amount, category, description`

// GetTransaction retrieves a ledger transaction by ID.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `SELECT` + transactionColumns + ` FROM transactions WHERE id = ?`
	txn, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// GetTransactions returns ledger transactions matching the filter, ordered
// by date then ID. UnmatchedOnly excludes transactions already linked to a
// matched occurrence.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(filter.OwnerID, "filter.OwnerID"); err != nil {
		return nil, err
	}

	query := `SELECT` + transactionColumns + ` FROM transactions WHERE owner_id = ?`
	args := []any{filter.OwnerID}

	if filter.PropertyID != nil {
		query += ` AND property_id = ?`
		args = append(args, *filter.PropertyID)
	}
	if filter.StartDate != nil {
		query += ` AND date >= ?`
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += ` AND date <= ?`
		args = append(args, *filter.EndDate)
	}
	if filter.UnmatchedOnly {
		query += ` AND id NOT IN (
			SELECT matched_transaction_id FROM expected_occurrences
			WHERE matched_transaction_id IS NOT NULL
		)`
	}
	query += ` ORDER BY date, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var propertyID, accountID, category sql.NullString
	var txnDate time.Time

	err := row.Scan(
		&txn.ID, &txn.Hash, &txn.OwnerID, &propertyID, &accountID,
		&txnDate, &txn.Amount, &category, &txn.Description,
	)
	if err != nil {
		return nil, err
	}

	txn.Date = txnDate.UTC()
	if propertyID.Valid {
		txn.PropertyID = &propertyID.String
	}
	if accountID.Valid {
		txn.AccountID = accountID.String
	}
	if category.Valid {
		txn.Category = category.String
	}
	return &txn, nil
}
