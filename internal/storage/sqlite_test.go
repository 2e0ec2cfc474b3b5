package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollyburn/rentflow/internal/common"
	"github.com/hollyburn/rentflow/internal/model"
	"github.com/hollyburn/rentflow/internal/service"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testTemplate() *model.RecurringTemplate {
	return &model.RecurringTemplate{
		OwnerID:          "owner-1",
		PropertyID:       strPtr("prop-1"),
		Description:      "Rent - 12 Harbour St",
		Category:         "Rent",
		Direction:        model.DirectionIncome,
		Frequency:        model.FrequencyMonthly,
		AnchorDayOfMonth: intPtr(1),
		Amount:           650,
		StartDate:        date(2024, time.January, 1),
		IsActive:         true,
	}
}

func TestCreateAndGetTemplate(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.CreateTemplate(ctx, tmpl))
	require.NotEmpty(t, tmpl.ID)

	// Defaults applied on create.
	assert.InDelta(t, model.DefaultAmountTolerance, tmpl.AmountTolerance, 0.001)

	got, err := store.GetTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tmpl.Description, got.Description)
	assert.Equal(t, model.FrequencyMonthly, got.Frequency)
	require.NotNil(t, got.AnchorDayOfMonth)
	assert.Equal(t, 1, *got.AnchorDayOfMonth)
	assert.Nil(t, got.AnchorDayOfWeek)
	require.NotNil(t, got.PropertyID)
	assert.Equal(t, "prop-1", *got.PropertyID)
	assert.True(t, got.StartDate.Equal(date(2024, time.January, 1)))
	assert.True(t, got.IsActive)
}

func TestGetTemplateNotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.GetTemplate(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateTemplateRejectsInvalid(t *testing.T) {
	store := newTestStorage(t)

	tmpl := testTemplate()
	tmpl.Frequency = model.FrequencyWeekly // wrong anchor kind for weekly
	err := store.CreateTemplate(context.Background(), tmpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "day-of-week anchor")
}

func TestListTemplatesActiveOnly(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	active := testTemplate()
	require.NoError(t, store.CreateTemplate(ctx, active))

	inactive := testTemplate()
	inactive.Description = "Old loan repayment"
	inactive.IsActive = false
	require.NoError(t, store.CreateTemplate(ctx, inactive))

	all, err := store.ListTemplates(ctx, "owner-1", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	activeOnly, err := store.ListTemplates(ctx, "owner-1", true)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, active.ID, activeOnly[0].ID)

	other, err := store.ListTemplates(ctx, "owner-2", false)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSetTemplateActive(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.CreateTemplate(ctx, tmpl))
	require.NoError(t, store.SetTemplateActive(ctx, tmpl.ID, false))

	got, err := store.GetTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.ErrorIs(t, store.SetTemplateActive(ctx, "missing", true), common.ErrNotFound)
}

func TestUpdateTemplate(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.CreateTemplate(ctx, tmpl))

	tmpl.Amount = 700
	tmpl.AmountTolerance = 10
	require.NoError(t, store.UpdateTemplate(ctx, tmpl))

	got, err := store.GetTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.InDelta(t, 700, got.Amount, 0.001)
	assert.InDelta(t, 10, got.AmountTolerance, 0.001)
}

func testOccurrence(templateID string, due time.Time) model.ExpectedOccurrence {
	return model.ExpectedOccurrence{
		ID:         "occ-" + due.Format("2006-01-02"),
		TemplateID: templateID,
		OwnerID:    "owner-1",
		PropertyID: strPtr("prop-1"),
		DueDate:    due,
		Amount:     650,
		Status:     model.OccurrencePending,
	}
}

func TestSaveOccurrencesIdempotent(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.CreateTemplate(ctx, tmpl))

	occs := []model.ExpectedOccurrence{
		testOccurrence(tmpl.ID, date(2024, time.January, 1)),
		testOccurrence(tmpl.ID, date(2024, time.February, 1)),
	}
	require.NoError(t, store.SaveOccurrences(ctx, occs))

	// Same template/date pair with a fresh ID must not duplicate.
	dup := testOccurrence(tmpl.ID, date(2024, time.January, 1))
	dup.ID = "occ-dup"
	require.NoError(t, store.SaveOccurrences(ctx, []model.ExpectedOccurrence{dup}))

	stored, err := store.GetOccurrences(ctx, service.OccurrenceFilter{TemplateID: tmpl.ID})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestGetMaterializedDates(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.CreateTemplate(ctx, tmpl))
	require.NoError(t, store.SaveOccurrences(ctx, []model.ExpectedOccurrence{
		testOccurrence(tmpl.ID, date(2024, time.January, 1)),
		testOccurrence(tmpl.ID, date(2024, time.February, 1)),
	}))

	dates, err := store.GetMaterializedDates(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Len(t, dates, 2)
	assert.True(t, dates[date(2024, time.January, 1)])
	assert.True(t, dates[date(2024, time.February, 1)])
}

func TestOccurrenceFilters(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.CreateTemplate(ctx, tmpl))

	jan := testOccurrence(tmpl.ID, date(2024, time.January, 1))
	feb := testOccurrence(tmpl.ID, date(2024, time.February, 1))
	mar := testOccurrence(tmpl.ID, date(2024, time.March, 1))
	require.NoError(t, store.SaveOccurrences(ctx, []model.ExpectedOccurrence{jan, feb, mar}))
	require.NoError(t, store.TransitionOccurrence(ctx, feb.ID, model.OccurrenceSkipped, nil))

	pending, err := store.GetOccurrences(ctx, service.OccurrenceFilter{
		OwnerID:  "owner-1",
		Statuses: []model.OccurrenceStatus{model.OccurrencePending},
	})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, jan.ID, pending[0].ID)
	assert.Equal(t, mar.ID, pending[1].ID)

	dueBefore := date(2024, time.February, 15)
	early, err := store.GetOccurrences(ctx, service.OccurrenceFilter{DueBefore: &dueBefore})
	require.NoError(t, err)
	assert.Len(t, early, 2)
}

func TestTransitionOccurrenceLifecycle(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.CreateTemplate(ctx, tmpl))

	occ := testOccurrence(tmpl.ID, date(2024, time.January, 1))
	require.NoError(t, store.SaveOccurrences(ctx, []model.ExpectedOccurrence{occ}))

	// pending -> missed -> matched (late payment) is legal.
	require.NoError(t, store.TransitionOccurrence(ctx, occ.ID, model.OccurrenceMissed, nil))
	require.NoError(t, store.TransitionOccurrence(ctx, occ.ID, model.OccurrenceMatched, strPtr("txn-9")))

	got, err := store.GetOccurrence(ctx, occ.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OccurrenceMatched, got.Status)
	require.NotNil(t, got.MatchedTransactionID)
	assert.Equal(t, "txn-9", *got.MatchedTransactionID)

	// matched is terminal.
	err = store.TransitionOccurrence(ctx, occ.ID, model.OccurrenceMissed, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal occurrence transition")
}

func testTransaction(id string, day int, amount float64) model.Transaction {
	return model.Transaction{
		ID:          id,
		OwnerID:     "owner-1",
		PropertyID:  strPtr("prop-1"),
		AccountID:   "acct-1",
		Date:        date(2024, time.March, day),
		Amount:      amount,
		Category:    "Rent",
		Description: "RENT PAYMENT",
	}
}

func TestSaveTransactionsDeduplicates(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	txns := []model.Transaction{
		testTransaction("t1", 1, 650),
		testTransaction("t2", 2, -45.50),
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))
	// Re-importing the same statement is harmless.
	require.NoError(t, store.SaveTransactions(ctx, txns))

	stored, err := store.GetTransactions(ctx, service.TransactionFilter{OwnerID: "owner-1"})
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestGetTransactionsFilters(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	prop2 := testTransaction("t3", 5, 650)
	prop2.PropertyID = strPtr("prop-2")

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		testTransaction("t1", 1, 650),
		testTransaction("t2", 20, 650),
		prop2,
	}))

	start := date(2024, time.March, 1)
	end := date(2024, time.March, 10)
	windowed, err := store.GetTransactions(ctx, service.TransactionFilter{
		OwnerID:   "owner-1",
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	assert.Len(t, windowed, 2)

	scoped, err := store.GetTransactions(ctx, service.TransactionFilter{
		OwnerID:    "owner-1",
		PropertyID: strPtr("prop-2"),
	})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "t3", scoped[0].ID)
}

func TestGetTransactionsUnmatchedOnly(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.CreateTemplate(ctx, tmpl))

	occ := testOccurrence(tmpl.ID, date(2024, time.March, 1))
	require.NoError(t, store.SaveOccurrences(ctx, []model.ExpectedOccurrence{occ}))
	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		testTransaction("t1", 1, 650),
		testTransaction("t2", 2, 650),
	}))

	require.NoError(t, store.TransitionOccurrence(ctx, occ.ID, model.OccurrenceMatched, strPtr("t1")))

	unmatched, err := store.GetTransactions(ctx, service.TransactionFilter{
		OwnerID:       "owner-1",
		UnmatchedOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, unmatched, 1)
	assert.Equal(t, "t2", unmatched[0].ID)
}

func TestBeginTxSavesAtomically(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.CreateTemplate(ctx, tmpl))

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.SaveOccurrences(ctx, []model.ExpectedOccurrence{
		testOccurrence(tmpl.ID, date(2024, time.April, 1)),
	}))
	require.NoError(t, tx.SaveTransactions(ctx, []model.Transaction{
		testTransaction("t-tx", 1, 650),
	}))
	require.NoError(t, tx.Commit())

	occs, err := store.GetOccurrences(ctx, service.OccurrenceFilter{TemplateID: tmpl.ID})
	require.NoError(t, err)
	assert.Len(t, occs, 1)
}

func TestValidationGuards(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.Error(t, store.SaveTransactions(ctx, nil))
	require.Error(t, store.SaveTransactions(ctx, []model.Transaction{}))
	require.Error(t, store.SaveOccurrences(ctx, []model.ExpectedOccurrence{{}}))

	_, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.Error(t, err)
}
