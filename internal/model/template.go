package model

import (
	"fmt"
	"time"
)

// Default matching policy values applied when a template does not override them.
const (
	DefaultAmountTolerance   = 5.00
	DefaultDateToleranceDays = 3
	DefaultAlertDelayDays    = 3
)

// TransactionDirection indicates whether money flows in or out.
type TransactionDirection string

// Transaction direction constants.
const (
	DirectionIncome   TransactionDirection = "income"
	DirectionExpense  TransactionDirection = "expense"
	DirectionTransfer TransactionDirection = "transfer"
)

// RecurringTemplate is a user-declared recurring obligation (rent, strata
// fees, loan repayments) used to generate future expected occurrences.
type RecurringTemplate struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	StartDate         time.Time
	EndDate           *time.Time
	PropertyID        *string
	AccountID         *string
	AnchorDayOfWeek   *int // 0-6, weekly/fortnightly only
	AnchorDayOfMonth  *int // 1-31, monthly/quarterly/annually only
	ID                string
	OwnerID           string
	Description       string
	Category          string
	Direction         TransactionDirection
	Frequency         Frequency
	Amount            float64
	AmountTolerance   float64
	DateToleranceDays int
	AlertDelayDays    int
	IsActive          bool
}

// ApplyDefaults fills zero-valued matching policy fields with the defaults.
func (t *RecurringTemplate) ApplyDefaults() {
	if t.AmountTolerance <= 0 {
		t.AmountTolerance = DefaultAmountTolerance
	}
	if t.DateToleranceDays <= 0 {
		t.DateToleranceDays = DefaultDateToleranceDays
	}
	if t.AlertDelayDays <= 0 {
		t.AlertDelayDays = DefaultAlertDelayDays
	}
}

// Validate ensures the template is internally consistent. Exactly one of the
// anchor fields must be set, and it must be the one the frequency uses.
func (t *RecurringTemplate) Validate() error {
	if t.OwnerID == "" {
		return fmt.Errorf("owner ID is required")
	}
	if t.Description == "" {
		return fmt.Errorf("description is required")
	}
	if t.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if !t.Frequency.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, string(t.Frequency))
	}
	if t.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("end date must not precede start date")
	}

	if t.Frequency.WeekBased() {
		if t.AnchorDayOfWeek == nil {
			return fmt.Errorf("%s templates require a day-of-week anchor", t.Frequency)
		}
		if t.AnchorDayOfMonth != nil {
			return fmt.Errorf("%s templates must not set a day-of-month anchor", t.Frequency)
		}
		if *t.AnchorDayOfWeek < 0 || *t.AnchorDayOfWeek > 6 {
			return fmt.Errorf("day-of-week anchor must be 0-6, got %d", *t.AnchorDayOfWeek)
		}
	} else {
		if t.AnchorDayOfMonth == nil {
			return fmt.Errorf("%s templates require a day-of-month anchor", t.Frequency)
		}
		if t.AnchorDayOfWeek != nil {
			return fmt.Errorf("%s templates must not set a day-of-week anchor", t.Frequency)
		}
		if *t.AnchorDayOfMonth < 1 || *t.AnchorDayOfMonth > 31 {
			return fmt.Errorf("day-of-month anchor must be 1-31, got %d", *t.AnchorDayOfMonth)
		}
	}

	return nil
}
