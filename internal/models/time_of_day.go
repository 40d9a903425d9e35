package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time expressed in minutes since midnight.
type TimeOfDay int

// MinutesPerDay bounds TimeOfDay values; 24:00 is only meaningful as an end bound.
const MinutesPerDay TimeOfDay = 24 * 60

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", raw)
	}
	hours, ok := twoDigits(parts[0])
	if !ok {
		return 0, fmt.Errorf("invalid hour in %q: expected two digits", raw)
	}
	minutes, ok := twoDigits(parts[1])
	if !ok {
		return 0, fmt.Errorf("invalid minute in %q: expected two digits", raw)
	}
	if minutes > 59 || hours > 24 || (hours == 24 && minutes != 0) {
		return 0, fmt.Errorf("time of day %q out of range", raw)
	}
	return TimeOfDay(hours*60 + minutes), nil
}

// twoDigits reads exactly two ASCII digits; signs and spaces are rejected.
func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// MustTimeOfDay panics on malformed input. Intended for constants.
func MustTimeOfDay(raw string) TimeOfDay {
	t, err := ParseTimeOfDay(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Of returns the wall-clock time of day of t in its own location.
func Of(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// String formats the value as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// On anchors the time of day to the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, int(t)/60, int(t)%60, 0, 0, day.Location())
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
