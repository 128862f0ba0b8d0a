package scheduling

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar days.
const DateLayout = "2006-01-02"

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekRange returns Monday 00:00 of t's week and the following Sunday 23:59:59.999.
func WeekRange(t time.Time) (time.Time, time.Time) {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// WeekStart returns the Monday that opens t's week.
func WeekStart(t time.Time) time.Time {
	start, _ := WeekRange(t)
	return start
}

// IsSameWeek reports whether both instants fall in the same Monday-based week.
func IsSameWeek(a, b time.Time) bool {
	return WeekStart(a).Equal(WeekStart(b))
}

// IsSameDay compares calendar days, ignoring the clock.
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AddDays shifts t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddWeeks shifts t by n weeks.
func AddWeeks(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, 7*n)
}

// WeekDays lists Monday through Sunday of t's week.
func WeekDays(t time.Time) []time.Time {
	start := WeekStart(t)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// ParseDate parses a YYYY-MM-DD calendar day in UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatDate renders a calendar day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
