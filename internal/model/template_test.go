package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func baseTemplate() RecurringTemplate {
	return RecurringTemplate{
		ID:               "tmpl-1",
		OwnerID:          "owner-1",
		Description:      "Rent - 12 Harbour St",
		Category:         "Rent",
		Direction:        DirectionIncome,
		Frequency:        FrequencyMonthly,
		AnchorDayOfMonth: intPtr(1),
		Amount:           650.00,
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:         true,
	}
}

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		mutate  func(*RecurringTemplate)
		name    string
		wantErr string
	}{
		{
			name:   "valid monthly template",
			mutate: func(_ *RecurringTemplate) {},
		},
		{
			name: "valid weekly template",
			mutate: func(tmpl *RecurringTemplate) {
				tmpl.Frequency = FrequencyWeekly
				tmpl.AnchorDayOfMonth = nil
				tmpl.AnchorDayOfWeek = intPtr(4)
			},
		},
		{
			name:    "missing owner",
			mutate:  func(tmpl *RecurringTemplate) { tmpl.OwnerID = "" },
			wantErr: "owner ID is required",
		},
		{
			name:    "zero amount",
			mutate:  func(tmpl *RecurringTemplate) { tmpl.Amount = 0 },
			wantErr: "amount must be positive",
		},
		{
			name:    "unknown frequency",
			mutate:  func(tmpl *RecurringTemplate) { tmpl.Frequency = "biweekly" },
			wantErr: "invalid frequency",
		},
		{
			name: "weekly without weekday anchor",
			mutate: func(tmpl *RecurringTemplate) {
				tmpl.Frequency = FrequencyWeekly
				tmpl.AnchorDayOfMonth = nil
			},
			wantErr: "require a day-of-week anchor",
		},
		{
			name: "monthly with both anchors",
			mutate: func(tmpl *RecurringTemplate) {
				tmpl.AnchorDayOfWeek = intPtr(2)
			},
			wantErr: "must not set a day-of-week anchor",
		},
		{
			name: "day of month out of range",
			mutate: func(tmpl *RecurringTemplate) {
				tmpl.AnchorDayOfMonth = intPtr(32)
			},
			wantErr: "must be 1-31",
		},
		{
			name: "end date before start",
			mutate: func(tmpl *RecurringTemplate) {
				end := tmpl.StartDate.AddDate(0, 0, -1)
				tmpl.EndDate = &end
			},
			wantErr: "end date must not precede start date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := baseTemplate()
			tt.mutate(&tmpl)
			err := tmpl.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestTemplateApplyDefaults(t *testing.T) {
	tmpl := baseTemplate()
	tmpl.ApplyDefaults()

	assert.InDelta(t, 5.00, tmpl.AmountTolerance, 0.001)
	assert.Equal(t, 3, tmpl.DateToleranceDays)
	assert.Equal(t, 3, tmpl.AlertDelayDays)

	// Explicit values survive.
	tmpl.AmountTolerance = 12.50
	tmpl.DateToleranceDays = 5
	tmpl.ApplyDefaults()
	assert.InDelta(t, 12.50, tmpl.AmountTolerance, 0.001)
	assert.Equal(t, 5, tmpl.DateToleranceDays)
}

func TestParseFrequency(t *testing.T) {
	for _, f := range Frequencies() {
		got, err := ParseFrequency(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFrequency("daily")
	require.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestFrequencyIntervalTable(t *testing.T) {
	assert.Equal(t, 7, FrequencyWeekly.Days())
	assert.Equal(t, 14, FrequencyFortnightly.Days())
	assert.Equal(t, 30, FrequencyMonthly.Days())
	assert.Equal(t, 90, FrequencyQuarterly.Days())
	assert.Equal(t, 365, FrequencyAnnually.Days())

	assert.True(t, FrequencyWeekly.WeekBased())
	assert.True(t, FrequencyFortnightly.WeekBased())
	assert.False(t, FrequencyMonthly.WeekBased())

	assert.Equal(t, 1, FrequencyMonthly.Months())
	assert.Equal(t, 3, FrequencyQuarterly.Months())
	assert.Equal(t, 12, FrequencyAnnually.Months())
	assert.Equal(t, 0, FrequencyWeekly.Months())
}
