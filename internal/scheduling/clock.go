package scheduling

import (
	"fmt"
	"strconv"
	"time"
)

const minutesPerDay = 24 * 60

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals share any minute. Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// GapTo returns the idle minutes between two non-overlapping intervals, or -1 when they overlap.
func (i Interval) GapTo(other Interval) int {
	if i.Overlaps(other) {
		return -1
	}
	if other.End <= i.Start {
		return i.Start - other.End
	}
	return other.Start - i.End
}

// ParseClock converts "HH:mm" into minutes since midnight.
func ParseClock(value string) (int, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: expected HH:mm", value)
	}
	hours, err := strconv.Atoi(value[:2])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid time %q: hour out of range", value)
	}
	minutes, err := strconv.Atoi(value[3:])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q: minute out of range", value)
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as "HH:mm".
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SessionInterval resolves a clock time and duration into an interval.
func SessionInterval(clock string, duration int) (Interval, error) {
	start, err := ParseClock(clock)
	if err != nil {
		return Interval{}, err
	}
	if duration <= 0 {
		return Interval{}, fmt.Errorf("invalid duration %d: must be positive", duration)
	}
	return Interval{Start: start, End: start + duration}, nil
}

// SessionStart combines a calendar day with a clock time.
func SessionStart(date time.Time, clock string) (time.Time, error) {
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return StartOfDay(date).Add(time.Duration(minutes) * time.Minute), nil
}

// GenerateSlots lists slot start times between dayStart (inclusive) and dayEnd (exclusive).
func GenerateSlots(dayStart, dayEnd string, stepMinutes int) ([]string, error) {
	start, err := ParseClock(dayStart)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(dayEnd)
	if err != nil {
		return nil, err
	}
	if stepMinutes <= 0 {
		return nil, fmt.Errorf("invalid slot step %d: must be positive", stepMinutes)
	}
	if end <= start {
		return nil, fmt.Errorf("day end %s must be after day start %s", dayEnd, dayStart)
	}
	slots := make([]string, 0, (end-start)/stepMinutes+1)
	for m := start; m < end; m += stepMinutes {
		slots = append(slots, FormatClock(m))
	}
	return slots, nil
}
