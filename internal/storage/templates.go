package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hollyburn/rentflow/internal/common"
	"github.com/hollyburn/rentflow/internal/model"
)

// CreateTemplate stores a new recurring template. A missing ID is assigned.
func (s *SQLiteStorage) CreateTemplate(ctx context.Context, tmpl *model.RecurringTemplate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if tmpl == nil {
		return fmt.Errorf("%w: template", ErrNilParameter)
	}

	tmpl.ApplyDefaults()
	if err := tmpl.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	if tmpl.ID == "" {
		tmpl.ID = uuid.NewString()
	}

	query := `
		INSERT INTO recurring_templates (
			id, owner_id, property_id, account_id, description, category,
			direction, frequency, anchor_day_of_week, anchor_day_of_month,
			amount, amount_tolerance, date_tolerance_days, alert_delay_days,
			start_date, end_date, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		tmpl.ID, tmpl.OwnerID, tmpl.PropertyID, tmpl.AccountID, tmpl.Description,
		tmpl.Category, string(tmpl.Direction), string(tmpl.Frequency),
		tmpl.AnchorDayOfWeek, tmpl.AnchorDayOfMonth,
		tmpl.Amount, tmpl.AmountTolerance, tmpl.DateToleranceDays, tmpl.AlertDelayDays,
		tmpl.StartDate, tmpl.EndDate, tmpl.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	slog.Info("created recurring template",
		"id", tmpl.ID,
		"description", tmpl.Description,
		"frequency", tmpl.Frequency)
	return nil
}

const templateColumns = `
	id, owner_id, property_id, account_id, description, category,
	direction, frequency, anchor_day_of_week, anchor_day_of_month,
	amount, amount_tolerance, date_tolerance_days, alert_delay_days,
	start_date, end_date, is_active, created_at, updated_at`

// GetTemplate retrieves a template by ID.
func (s *SQLiteStorage) GetTemplate(ctx context.Context, id string) (*model.RecurringTemplate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `SELECT` + templateColumns + ` FROM recurring_templates WHERE id = ?`
	tmpl, err := scanTemplate(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query template: %w", err)
	}
	return tmpl, nil
}

// ListTemplates returns an owner's templates, optionally restricted to
// active ones, ordered by description.
func (s *SQLiteStorage) ListTemplates(ctx context.Context, ownerID string, activeOnly bool) ([]model.RecurringTemplate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	query := `SELECT` + templateColumns + ` FROM recurring_templates WHERE owner_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY description, id`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var templates []model.RecurringTemplate
	for rows.Next() {
		tmpl, scanErr := scanTemplate(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan template: %w", scanErr)
		}
		templates = append(templates, *tmpl)
	}
	return templates, rows.Err()
}

// UpdateTemplate rewrites a template's mutable fields. Already-materialized
// occurrences keep their snapshot amounts.
func (s *SQLiteStorage) UpdateTemplate(ctx context.Context, tmpl *model.RecurringTemplate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if tmpl == nil {
		return fmt.Errorf("%w: template", ErrNilParameter)
	}
	if err := tmpl.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	query := `
		UPDATE recurring_templates SET
			property_id = ?, account_id = ?, description = ?, category = ?,
			direction = ?, frequency = ?, anchor_day_of_week = ?, anchor_day_of_month = ?,
			amount = ?, amount_tolerance = ?, date_tolerance_days = ?, alert_delay_days = ?,
			start_date = ?, end_date = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		tmpl.PropertyID, tmpl.AccountID, tmpl.Description, tmpl.Category,
		string(tmpl.Direction), string(tmpl.Frequency), tmpl.AnchorDayOfWeek, tmpl.AnchorDayOfMonth,
		tmpl.Amount, tmpl.AmountTolerance, tmpl.DateToleranceDays, tmpl.AlertDelayDays,
		tmpl.StartDate, tmpl.EndDate, tmpl.IsActive,
		tmpl.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("template %s: %w", tmpl.ID, common.ErrNotFound)
	}
	return nil
}

// SetTemplateActive toggles schedule generation for a template without
// touching its history.
func (s *SQLiteStorage) SetTemplateActive(ctx context.Context, id string, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE recurring_templates SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, id)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("template %s: %w", id, common.ErrNotFound)
	}

	slog.Info("template activation changed", "id", id, "active", active)
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*model.RecurringTemplate, error) {
	var tmpl model.RecurringTemplate
	var direction, frequency string
	var endDate sql.NullTime
	var propertyID, accountID sql.NullString
	var anchorDOW, anchorDOM sql.NullInt64
	var startDate time.Time

	err := row.Scan(
		&tmpl.ID, &tmpl.OwnerID, &propertyID, &accountID, &tmpl.Description,
		&tmpl.Category, &direction, &frequency, &anchorDOW, &anchorDOM,
		&tmpl.Amount, &tmpl.AmountTolerance, &tmpl.DateToleranceDays, &tmpl.AlertDelayDays,
		&startDate, &endDate, &tmpl.IsActive, &tmpl.CreatedAt, &tmpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tmpl.Direction = model.TransactionDirection(direction)
	tmpl.Frequency = model.Frequency(frequency)
	tmpl.StartDate = startDate.UTC()
	if endDate.Valid {
		end := endDate.Time.UTC()
		tmpl.EndDate = &end
	}
	if propertyID.Valid {
		tmpl.PropertyID = &propertyID.String
	}
	if accountID.Valid {
		tmpl.AccountID = &accountID.String
	}
	if anchorDOW.Valid {
		v := int(anchorDOW.Int64)
		tmpl.AnchorDayOfWeek = &v
	}
	if anchorDOM.Valid {
		v := int(anchorDOM.Int64)
		tmpl.AnchorDayOfMonth = &v
	}
	return &tmpl, nil
}
