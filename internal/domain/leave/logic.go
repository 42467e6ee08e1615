package leave

import "time"

// InclusiveDays returns the inclusive day count between start and end,
// ignoring time-of-day.
func InclusiveDays(start, end time.Time) (int, error) {
	s := midnight(start)
	e := midnight(end)
	if e.Before(s) {
		return 0, ErrInvalidRange
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

// monthSpan counts the days of one request falling in a single
// (year, month) pair. Spans are kept in chronological order.
type monthSpan struct {
	Year  int
	Month time.Month
	Days  int
}

// addDay folds one more day into the span list, extending the last span
// when the day stays in the same month.
func addDay(spans []monthSpan, d time.Time) []monthSpan {
	if n := len(spans); n > 0 && spans[n-1].Year == d.Year() && spans[n-1].Month == d.Month() {
		spans[n-1].Days++
		return spans
	}
	return append(spans, monthSpan{Year: d.Year(), Month: d.Month(), Days: 1})
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// monthIndex converts time.Month to the 0-based slot used by buckets.
func monthIndex(m time.Month) int {
	return int(m) - 1
}
