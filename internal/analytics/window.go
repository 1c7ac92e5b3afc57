package analytics

import (
	"fmt"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

const secondsPerDay = 24 * 60 * 60

// ResolveWindow computes the analysis window and its comparison window.
// from and to are only read for custom ranges. Unknown periods, and custom
// ranges without both bounds, fall back to the month preset.
func ResolveWindow(period entity.Period, from, to, now time.Time) entity.TimeWindow {
	if period == entity.PeriodCustom && !from.IsZero() && !to.IsZero() {
		return customWindow(from, to)
	}

	var start, prevStart time.Time
	switch period {
	case entity.PeriodDay:
		start = startOfDay(now)
		prevStart = start.AddDate(0, 0, -1)
	case entity.PeriodWeek:
		start = startOfWeek(now)
		prevStart = start.AddDate(0, 0, -7)
	case entity.PeriodYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		prevStart = start.AddDate(-1, 0, 0)
	default:
		period = entity.PeriodMonth
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		prevStart = start.AddDate(0, -1, 0)
	}

	return entity.TimeWindow{
		Period:    period,
		Start:     start,
		End:       now,
		PrevStart: prevStart,
		PrevEnd:   start.Add(-time.Nanosecond),
		Label:     presetLabel(period, start),
		PrevLabel: presetLabel(period, prevStart),
	}
}

func customWindow(from, to time.Time) entity.TimeWindow {
	if to.Before(from) {
		from, to = to, from
	}
	start := startOfDay(from)
	lastDay := startOfDay(to.In(from.Location()))
	days := spannedDays(start, lastDay)

	end := lastDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
	prevStart := start.AddDate(0, 0, -days)
	prevEnd := start.Add(-time.Nanosecond)

	return entity.TimeWindow{
		Period:    entity.PeriodCustom,
		Start:     start,
		End:       end,
		PrevStart: prevStart,
		PrevEnd:   prevEnd,
		Label:     rangeLabel(start, end),
		PrevLabel: rangeLabel(prevStart, prevEnd),
	}
}

// CustomSpanDays returns how many calendar days a custom range covers,
// bounds in either order.
func CustomSpanDays(from, to time.Time) int {
	if to.Before(from) {
		from, to = to, from
	}
	return spannedDays(startOfDay(from), startOfDay(to.In(from.Location())))
}

// spannedDays counts calendar days from start to last inclusive, at least 1.
func spannedDays(start, last time.Time) int {
	days := int(dayNumber(last)-dayNumber(start)) + 1
	if days < 1 {
		return 1
	}
	return days
}

// dayNumber is the count of days since the Unix epoch for t's calendar date.
func dayNumber(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

// GranularityFor picks the series bucket size for a period.
func GranularityFor(p entity.Period) entity.MetricsGranularity {
	switch p {
	case entity.PeriodDay:
		return entity.MetricsGranularityHour
	case entity.PeriodYear:
		return entity.MetricsGranularityMonth
	default:
		return entity.MetricsGranularityDay
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns Monday 00:00 of t's ISO week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func presetLabel(p entity.Period, start time.Time) string {
	switch p {
	case entity.PeriodDay:
		return start.Format("Jan 2, 2006")
	case entity.PeriodWeek:
		return fmt.Sprintf("Week of %s", start.Format("Jan 2, 2006"))
	case entity.PeriodYear:
		return start.Format("2006")
	default:
		return start.Format("January 2006")
	}
}

func rangeLabel(start, end time.Time) string {
	return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
}
