package analytics

import (
	"testing"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestResolveWindow_Presets(t *testing.T) {
	// Wednesday
	now := time.Date(2024, time.May, 15, 13, 30, 0, 0, time.UTC)

	tests := []struct {
		period    entity.Period
		start     time.Time
		prevStart time.Time
		label     string
	}{
		{entity.PeriodDay, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC), "May 15, 2024"},
		{entity.PeriodWeek, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), "Week of May 13, 2024"},
		{entity.PeriodMonth, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "May 2024"},
		{entity.PeriodYear, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "2024"},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			w := ResolveWindow(tt.period, time.Time{}, time.Time{}, now)
			assert.Equal(t, tt.period, w.Period)
			assert.Equal(t, tt.start, w.Start)
			assert.Equal(t, now, w.End)
			assert.Equal(t, tt.prevStart, w.PrevStart)
			assert.Equal(t, tt.start.Add(-time.Nanosecond), w.PrevEnd)
			assert.Equal(t, tt.label, w.Label)
			assert.False(t, w.Contains(w.PrevEnd))
			assert.True(t, w.ContainsPrev(w.PrevEnd))
		})
	}
}

func TestResolveWindow_WeekStartsMonday(t *testing.T) {
	sunday := time.Date(2024, time.May, 19, 23, 0, 0, 0, time.UTC)
	w := ResolveWindow(entity.PeriodWeek, time.Time{}, time.Time{}, sunday)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestResolveWindow_UnknownFallsBackToMonth(t *testing.T) {
	now := time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)
	w := ResolveWindow(entity.Period("quarter"), time.Time{}, time.Time{}, now)
	assert.Equal(t, entity.PeriodMonth, w.Period)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), w.PrevStart)
}

func TestResolveWindow_CustomMissingBoundFallsBack(t *testing.T) {
	now := time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)
	w := ResolveWindow(entity.PeriodCustom, now.AddDate(0, 0, -3), time.Time{}, now)
	assert.Equal(t, entity.PeriodMonth, w.Period)
}

func TestResolveWindow_Custom(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	from := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 12, 8, 0, 0, 0, time.UTC)

	w := ResolveWindow(entity.PeriodCustom, from, to, now)
	assert.Equal(t, entity.PeriodCustom, w.Period)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), w.End)
	assert.Equal(t, time.Date(2024, 5, 7, 0, 0, 0, 0, time.UTC), w.PrevStart)
	assert.Equal(t, w.Start.Add(-time.Nanosecond), w.PrevEnd)
	assert.Equal(t, "May 10, 2024 - May 12, 2024", w.Label)

	swapped := ResolveWindow(entity.PeriodCustom, to, from, now)
	assert.Equal(t, w, swapped)
}

func TestResolveWindow_CustomSameDaySpansOneDay(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	day := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	w := ResolveWindow(entity.PeriodCustom, day, day, now)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC), w.PrevStart)
}

func TestResolveWindow_CustomPreviousMatchesLengthOverCenturies(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	from := time.Date(1, time.January, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

	w := ResolveWindow(entity.PeriodCustom, from, to, now)
	current := spannedDays(w.Start, w.End)
	assert.Equal(t, 3652058, current)
	assert.Equal(t, current, spannedDays(w.PrevStart, w.PrevEnd))
	assert.Equal(t, from.Add(-time.Nanosecond), w.PrevEnd)
}

func TestCustomSpanDays(t *testing.T) {
	may10 := time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, CustomSpanDays(may10, may10))
	assert.Equal(t, 3, CustomSpanDays(may10, may10.AddDate(0, 0, 2)))
	assert.Equal(t, 3, CustomSpanDays(may10.AddDate(0, 0, 2), may10))
	assert.Equal(t, 366, CustomSpanDays(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestGranularityFor(t *testing.T) {
	assert.Equal(t, entity.MetricsGranularityHour, GranularityFor(entity.PeriodDay))
	assert.Equal(t, entity.MetricsGranularityDay, GranularityFor(entity.PeriodWeek))
	assert.Equal(t, entity.MetricsGranularityDay, GranularityFor(entity.PeriodCustom))
	assert.Equal(t, entity.MetricsGranularityMonth, GranularityFor(entity.PeriodYear))
}

func TestRevenueSeries_FillsGaps(t *testing.T) {
	r := entity.TimeRange{
		From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 5, 3, 18, 0, 0, 0, time.UTC),
	}
	orders := []entity.Order{
		{ID: 1, Total: 100, CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
		{ID: 2, Total: 50, CreatedAt: time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)},
		{ID: 3, Total: 70, CreatedAt: time.Date(2024, 5, 3, 1, 0, 0, 0, time.UTC)},
	}

	got := RevenueSeries(orders, r, entity.MetricsGranularityDay)
	assert.Equal(t, []entity.TimeSeriesPoint{
		{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Value: 150, Count: 2},
		{Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), Value: 70, Count: 1},
	}, got)
}
