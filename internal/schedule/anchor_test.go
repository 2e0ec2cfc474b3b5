package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollyburn/rentflow/internal/model"
)

func intPtr(i int) *int { return &i }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextAnchorDateWeekly(t *testing.T) {
	anchor := Anchor{DayOfWeek: intPtr(1)} // Monday
	start := date(2024, time.January, 1)

	tests := []struct {
		name      string
		onOrAfter time.Time
		want      time.Time
	}{
		{name: "already on anchor weekday", onOrAfter: date(2024, time.January, 1), want: date(2024, time.January, 1)},
		{name: "mid week rolls forward", onOrAfter: date(2024, time.January, 3), want: date(2024, time.January, 8)},
		{name: "day before anchor", onOrAfter: date(2024, time.January, 7), want: date(2024, time.January, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextAnchorDate(model.FrequencyWeekly, anchor, start, tt.onOrAfter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextAnchorDateFortnightlyLattice(t *testing.T) {
	// Seed: Monday 2024-01-01. Lattice: Jan 1, Jan 15, Jan 29, ...
	anchor := Anchor{DayOfWeek: intPtr(1)}
	start := date(2024, time.January, 1)

	tests := []struct {
		name      string
		onOrAfter time.Time
		want      time.Time
	}{
		{name: "on seed", onOrAfter: date(2024, time.January, 1), want: date(2024, time.January, 1)},
		{name: "before seed returns seed", onOrAfter: date(2023, time.December, 20), want: date(2024, time.January, 1)},
		{name: "off-lattice monday skipped", onOrAfter: date(2024, time.January, 8), want: date(2024, time.January, 15)},
		{name: "mid period", onOrAfter: date(2024, time.January, 16), want: date(2024, time.January, 29)},
		{name: "exactly one period", onOrAfter: date(2024, time.January, 15), want: date(2024, time.January, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextAnchorDate(model.FrequencyFortnightly, anchor, start, tt.onOrAfter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextAnchorDateMonthEndClamping(t *testing.T) {
	anchor := Anchor{DayOfMonth: intPtr(31)}
	start := date(2024, time.January, 1)

	tests := []struct {
		name      string
		onOrAfter time.Time
		want      time.Time
	}{
		{name: "31 day month", onOrAfter: date(2024, time.January, 1), want: date(2024, time.January, 31)},
		{name: "leap february clamps to 29", onOrAfter: date(2024, time.February, 1), want: date(2024, time.February, 29)},
		{name: "30 day month clamps to 30", onOrAfter: date(2024, time.April, 1), want: date(2024, time.April, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextAnchorDate(model.FrequencyMonthly, anchor, start, tt.onOrAfter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// Non-leap February clamps to the 28th.
	got, err := NextAnchorDate(model.FrequencyMonthly, anchor, date(2023, time.January, 1), date(2023, time.February, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2023, time.February, 28), got)
}

func TestNextAnchorDateQuarterlyLattice(t *testing.T) {
	// Quarterly seeded in February: candidate months are Feb, May, Aug, Nov.
	anchor := Anchor{DayOfMonth: intPtr(15)}
	start := date(2024, time.February, 15)

	got, err := NextAnchorDate(model.FrequencyQuarterly, anchor, start, date(2024, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.May, 15), got)

	got, err = NextAnchorDate(model.FrequencyQuarterly, anchor, start, date(2024, time.May, 15))
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.May, 15), got)
}

func TestNextAnchorDateFarFuture(t *testing.T) {
	// The lattice jump must not walk year-by-year from a distant seed.
	anchor := Anchor{DayOfMonth: intPtr(1)}
	start := date(1990, time.January, 1)

	got, err := NextAnchorDate(model.FrequencyMonthly, anchor, start, date(2024, time.June, 12))
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.July, 1), got)
}

func TestNextAnchorDateErrors(t *testing.T) {
	_, err := NextAnchorDate(model.Frequency("daily"), Anchor{DayOfMonth: intPtr(1)}, date(2024, time.January, 1), date(2024, time.January, 1))
	require.ErrorIs(t, err, model.ErrInvalidFrequency)

	_, err = NextAnchorDate(model.FrequencyWeekly, Anchor{}, date(2024, time.January, 1), date(2024, time.January, 1))
	require.Error(t, err)

	_, err = NextAnchorDate(model.FrequencyMonthly, Anchor{}, date(2024, time.January, 1), date(2024, time.January, 1))
	require.Error(t, err)
}
