package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollyburn/rentflow/internal/model"
	"github.com/hollyburn/rentflow/internal/recon"
	"github.com/hollyburn/rentflow/internal/service"
	"github.com/hollyburn/rentflow/internal/testutil"
)

const testOwner = "owner-1"

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createMonthlyTemplate(t *testing.T, store service.Storage, amount float64) *model.RecurringTemplate {
	t.Helper()

	tmpl := &model.RecurringTemplate{
		OwnerID:          testOwner,
		PropertyID:       strPtr("prop-1"),
		Description:      "Rent - 12 Harbour St",
		Category:         "Rent",
		Direction:        model.DirectionIncome,
		Frequency:        model.FrequencyMonthly,
		AnchorDayOfMonth: intPtr(1),
		Amount:           amount,
		StartDate:        date(2024, time.January, 1),
		IsActive:         true,
	}
	require.NoError(t, store.CreateTemplate(context.Background(), tmpl))
	return tmpl
}

func importTransaction(t *testing.T, store service.Storage, id string, day time.Time, amount float64) {
	t.Helper()

	require.NoError(t, store.SaveTransactions(context.Background(), []model.Transaction{{
		ID:          id,
		OwnerID:     testOwner,
		PropertyID:  strPtr("prop-1"),
		AccountID:   "acct-1",
		Date:        day,
		Amount:      amount,
		Category:    "Rent",
		Description: "RENT PAYMENT",
	}}))
}

func TestGenerateSchedules(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	createMonthlyTemplate(t, store, 650)

	stats, err := eng.GenerateSchedules(ctx, testOwner, date(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Templates)
	assert.Equal(t, 3, stats.NewOccurrences) // Jan 1, Feb 1, Mar 1 within 90 days

	// Re-running generates nothing new.
	stats, err = eng.GenerateSchedules(ctx, testOwner, date(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.NewOccurrences)
	assert.Equal(t, 3, stats.Skipped)
}

func TestGenerateSchedulesSkipsInactive(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	tmpl := createMonthlyTemplate(t, store, 650)
	require.NoError(t, store.SetTemplateActive(ctx, tmpl.ID, false))

	stats, err := eng.GenerateSchedules(ctx, testOwner, date(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Templates)
	assert.Equal(t, 0, stats.NewOccurrences)
}

func TestRunMatchingAutoAppliesHighConfidence(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	createMonthlyTemplate(t, store, 650)
	_, err := eng.GenerateSchedules(ctx, testOwner, date(2024, time.January, 1))
	require.NoError(t, err)

	// Exact amount, one day late: high confidence.
	importTransaction(t, store, "t-jan", date(2024, time.January, 2), 650)

	stats, suggestions, err := eng.RunMatching(ctx, testOwner, true)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Scanned)
	assert.Equal(t, 1, stats.AutoMatched)
	assert.Equal(t, 2, stats.Unmatched)
	assert.Empty(t, suggestions)

	matched, err := store.GetOccurrences(ctx, service.OccurrenceFilter{
		OwnerID:  testOwner,
		Statuses: []model.OccurrenceStatus{model.OccurrenceMatched},
	})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.NotNil(t, matched[0].MatchedTransactionID)
	assert.Equal(t, "t-jan", *matched[0].MatchedTransactionID)
}

func TestRunMatchingSuggestsMediumConfidence(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	createMonthlyTemplate(t, store, 650)
	_, err := eng.GenerateSchedules(ctx, testOwner, date(2024, time.January, 1))
	require.NoError(t, err)

	// 3% off and 3 days late: within date tolerance but outside the
	// high-confidence window, so it needs review.
	importTransaction(t, store, "t-jan", date(2024, time.January, 4), 630)

	stats, suggestions, err := eng.RunMatching(ctx, testOwner, true)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.AutoMatched)
	assert.Equal(t, 1, stats.Suggested)
	require.Len(t, suggestions, 1)
	require.Len(t, suggestions[0].Matches, 1)
	assert.Equal(t, recon.ConfidenceMedium, suggestions[0].Matches[0].Confidence)
}

func TestRunMatchingClaimsTransactionOnce(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	createMonthlyTemplate(t, store, 650)
	_, err := eng.GenerateSchedules(ctx, testOwner, date(2024, time.January, 1))
	require.NoError(t, err)

	// One payment cannot settle two months.
	importTransaction(t, store, "t-jan", date(2024, time.January, 1), 650)

	stats, _, err := eng.RunMatching(ctx, testOwner, true)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.AutoMatched)
}

func TestConfirmMatchAndSkip(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	createMonthlyTemplate(t, store, 650)
	_, err := eng.GenerateSchedules(ctx, testOwner, date(2024, time.January, 1))
	require.NoError(t, err)
	importTransaction(t, store, "t-jan", date(2024, time.January, 4), 630)

	occs, err := store.GetOccurrences(ctx, service.OccurrenceFilter{OwnerID: testOwner})
	require.NoError(t, err)
	require.NotEmpty(t, occs)

	require.NoError(t, eng.ConfirmMatch(ctx, occs[0].ID, "t-jan"))
	require.NoError(t, eng.SkipOccurrence(ctx, occs[1].ID))

	// Terminal states reject further changes.
	require.Error(t, eng.SkipOccurrence(ctx, occs[0].ID))
}

func TestFlagMissed(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	createMonthlyTemplate(t, store, 650) // AlertDelayDays defaults to 3
	_, err := eng.GenerateSchedules(ctx, testOwner, date(2024, time.January, 1))
	require.NoError(t, err)

	// Jan 1 is 5 days overdue, Feb 1 not yet due.
	missed, err := eng.FlagMissed(ctx, testOwner, date(2024, time.January, 6))
	require.NoError(t, err)
	require.Len(t, missed, 1)
	assert.Equal(t, 5, missed[0].DaysOverdue)

	// Re-running is idempotent: already-missed occurrences stay flagged.
	missed, err = eng.FlagMissed(ctx, testOwner, date(2024, time.January, 6))
	require.NoError(t, err)
	assert.Empty(t, missed)

	// A late payment still reconciles a missed occurrence.
	flagged, err := store.GetOccurrences(ctx, service.OccurrenceFilter{
		OwnerID:  testOwner,
		Statuses: []model.OccurrenceStatus{model.OccurrenceMissed},
	})
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	importTransaction(t, store, "t-late", date(2024, time.January, 8), 650)
	require.NoError(t, eng.ConfirmMatch(ctx, flagged[0].ID, "t-late"))
}

func TestFlagMissedRespectsGracePeriod(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	createMonthlyTemplate(t, store, 650)
	_, err := eng.GenerateSchedules(ctx, testOwner, date(2024, time.January, 1))
	require.NoError(t, err)

	// Exactly at the grace boundary: 3 days overdue with a 3-day delay is
	// not yet missed.
	missed, err := eng.FlagMissed(ctx, testOwner, date(2024, time.January, 4))
	require.NoError(t, err)
	assert.Empty(t, missed)
}

func TestSuggestTemplates(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	// Six months of identical rent receipts, no template yet.
	for i := 0; i < 6; i++ {
		importTransaction(t, store,
			fmt.Sprintf("t-hist-%d", i),
			date(2024, time.January, 1).AddDate(0, i, 0),
			650)
	}

	suggestions, err := eng.SuggestTemplates(ctx, testOwner, date(2024, time.July, 1))
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, model.FrequencyMonthly, suggestions[0].Frequency)
	assert.Equal(t, "prop-1", suggestions[0].PropertyID)
	assert.InDelta(t, 650, suggestions[0].Amount, 0.001)
	assert.Greater(t, suggestions[0].Confidence, 0.9)
}

func TestSuggestTemplatesSkipsCovered(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	// Template description differs in case and suffix from the bank text;
	// the fuzzy comparison still recognizes it.
	tmpl := createMonthlyTemplate(t, store, 650)
	tmpl.Description = "Rent payment"
	require.NoError(t, store.UpdateTemplate(ctx, tmpl))

	for i := 0; i < 6; i++ {
		importTransaction(t, store,
			fmt.Sprintf("t-hist-%d", i),
			date(2024, time.January, 1).AddDate(0, i, 0),
			650)
	}

	suggestions, err := eng.SuggestTemplates(ctx, testOwner, date(2024, time.July, 1))
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestMaterializePattern(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		importTransaction(t, store,
			fmt.Sprintf("t-hist-%d", i),
			date(2024, time.January, 15).AddDate(0, i, 0),
			650)
	}

	suggestions, err := eng.SuggestTemplates(ctx, testOwner, date(2024, time.July, 1))
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	tmpl, err := eng.MaterializePattern(ctx, testOwner, suggestions[0])
	require.NoError(t, err)
	assert.Equal(t, model.FrequencyMonthly, tmpl.Frequency)
	assert.Equal(t, model.DirectionIncome, tmpl.Direction)
	require.NotNil(t, tmpl.AnchorDayOfMonth)
	assert.Equal(t, 15, *tmpl.AnchorDayOfMonth)
	assert.True(t, tmpl.IsActive)

	// Promoting the pattern suppresses it on the next scan.
	suggestions, err = eng.SuggestTemplates(ctx, testOwner, date(2024, time.July, 1))
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestBuildSummary(t *testing.T) {
	store := testutil.SetupTestDB(t)
	eng := New(store)
	ctx := context.Background()

	createMonthlyTemplate(t, store, 650)
	_, err := eng.GenerateSchedules(ctx, testOwner, date(2024, time.January, 1))
	require.NoError(t, err)

	importTransaction(t, store, "t-jan", date(2024, time.January, 1), 650)
	_, _, err = eng.RunMatching(ctx, testOwner, true)
	require.NoError(t, err)

	summary, err := eng.BuildSummary(ctx, testOwner, service.DateRange{
		Start: date(2023, time.December, 31),
		End:   date(2024, time.April, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ByStatus[model.OccurrenceMatched])
	assert.Equal(t, 2, summary.ByStatus[model.OccurrencePending])
	assert.InDelta(t, 1950, summary.TotalAmount, 0.001)
	assert.Equal(t, 3, summary.ByCategory["Rent"].Count)
}
