package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hollyburn/rentflow/internal/common"
	"github.com/hollyburn/rentflow/internal/model"
	"github.com/hollyburn/rentflow/internal/service"
)

// SaveOccurrences stores a batch of expected occurrences. A template/date
// pair already present is left untouched, so re-materializing a window is
// safe.
func (s *SQLiteStorage) SaveOccurrences(ctx context.Context, occurrences []model.ExpectedOccurrence) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOccurrences(occurrences); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveOccurrencesTx(ctx, tx, occurrences); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) saveOccurrencesTx(ctx context.Context, tx *sql.Tx, occurrences []model.ExpectedOccurrence) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO expected_occurrences (
			id, template_id, owner_id, property_id, due_date, amount,
			status, matched_transaction_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, occ := range occurrences {
		if _, err := stmt.ExecContext(ctx,
			occ.ID, occ.TemplateID, occ.OwnerID, occ.PropertyID,
			occ.DueDate, occ.Amount, string(occ.Status), occ.MatchedTransactionID,
		); err != nil {
			return fmt.Errorf("failed to save occurrence %s: %w", occ.ID, err)
		}
	}
	return nil
}

const occurrenceColumns = `
	id, template_id, owner_id, property_id, due_date, amount,
	status, matched_transaction_id, created_at, updated_at`

// GetOccurrence retrieves an occurrence by ID.
func (s *SQLiteStorage) GetOccurrence(ctx context.Context, id string) (*model.ExpectedOccurrence, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `SELECT` + occurrenceColumns + ` FROM expected_occurrences WHERE id = ?`
	occ, err := scanOccurrence(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("occurrence %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrence: %w", err)
	}
	return occ, nil
}

// GetOccurrences returns occurrences matching the filter, ordered by due
// date then ID for deterministic processing.
func (s *SQLiteStorage) GetOccurrences(ctx context.Context, filter service.OccurrenceFilter) ([]model.ExpectedOccurrence, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT` + occurrenceColumns + ` FROM expected_occurrences WHERE 1=1`
	var args []any

	if filter.OwnerID != "" {
		query += ` AND owner_id = ?`
		args = append(args, filter.OwnerID)
	}
	if filter.TemplateID != "" {
		query += ` AND template_id = ?`
		args = append(args, filter.TemplateID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += ` AND status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	if filter.DueAfter != nil {
		query += ` AND due_date >= ?`
		args = append(args, *filter.DueAfter)
	}
	if filter.DueBefore != nil {
		query += ` AND due_date <= ?`
		args = append(args, *filter.DueBefore)
	}
	query += ` ORDER BY due_date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var occurrences []model.ExpectedOccurrence
	for rows.Next() {
		occ, scanErr := scanOccurrence(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan occurrence: %w", scanErr)
		}
		occurrences = append(occurrences, *occ)
	}
	return occurrences, rows.Err()
}

// GetMaterializedDates returns the set of due dates already stored for a
// template, normalized to midnight UTC, for idempotent re-generation.
func (s *SQLiteStorage) GetMaterializedDates(ctx context.Context, templateID string) (map[time.Time]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(templateID, "templateID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT due_date FROM expected_occurrences WHERE template_id = ?`, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query materialized dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	dates := make(map[time.Time]bool)
	for rows.Next() {
		var due time.Time
		if err := rows.Scan(&due); err != nil {
			return nil, fmt.Errorf("failed to scan due date: %w", err)
		}
		due = due.UTC()
		dates[time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)] = true
	}
	return dates, rows.Err()
}

// TransitionOccurrence moves an occurrence through its lifecycle, enforcing
// the legal transitions. The occurrence is re-read inside a transaction so
// concurrent callers cannot race a terminal state.
func (s *SQLiteStorage) TransitionOccurrence(ctx context.Context, id string, next model.OccurrenceStatus, matchedTransactionID *string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT` + occurrenceColumns + ` FROM expected_occurrences WHERE id = ?`
	occ, err := scanOccurrence(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return fmt.Errorf("occurrence %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load occurrence: %w", err)
	}

	if err := occ.TransitionTo(next, matchedTransactionID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE expected_occurrences
		SET status = ?, matched_transaction_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		string(occ.Status), occ.MatchedTransactionID, id)
	if err != nil {
		return fmt.Errorf("failed to update occurrence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transition: %w", err)
	}

	slog.Info("occurrence transitioned",
		"id", id,
		"status", next)
	return nil
}

func scanOccurrence(row rowScanner) (*model.ExpectedOccurrence, error) {
	var occ model.ExpectedOccurrence
	var status string
	var propertyID, matchedTxnID sql.NullString
	var dueDate time.Time

	err := row.Scan(
		&occ.ID, &occ.TemplateID, &occ.OwnerID, &propertyID, &dueDate,
		&occ.Amount, &status, &matchedTxnID, &occ.CreatedAt, &occ.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	occ.Status = model.OccurrenceStatus(status)
	occ.DueDate = dueDate.UTC()
	if propertyID.Valid {
		occ.PropertyID = &propertyID.String
	}
	if matchedTxnID.Valid {
		occ.MatchedTransactionID = &matchedTxnID.String
	}
	return &occ, nil
}
