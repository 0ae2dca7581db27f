package sign

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseClock parses "HH:MM" or "HHMM" and returns today's date (from now)
// at that hour and minute. An empty string returns now.
func ParseClock(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}

	digits := strings.ReplaceAll(s, ":", "")
	if len(digits) != 4 {
		return time.Time{}, fmt.Errorf("%w: time %q: want HH:MM", ErrInvalidParameter, s)
	}
	hour, errH := strconv.Atoi(digits[:2])
	minute, errM := strconv.Atoi(digits[2:])
	if errH != nil || errM != nil || hour > 23 || minute > 59 || hour < 0 || minute < 0 {
		return time.Time{}, fmt.Errorf("%w: time %q: want HH:MM", ErrInvalidParameter, s)
	}

	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), nil
}

// ParseDate parses "MM/DD/YY" or "MM-DD-YY". An empty string returns now.
func ParseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}

	t, err := time.ParseInLocation("01/02/06", strings.ReplaceAll(s, "-", "/"), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: want MM/DD/YY", ErrInvalidParameter, s)
	}
	return t, nil
}

// ParseBool reports whether s is "true", case-insensitively.
func ParseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// ParseInt parses s as a decimal integer, returning def when s is empty.
func ParseInt(name, s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrInvalidParameter, name, s)
	}
	return n, nil
}

// StripColons removes ':' from run-time table times ("09:00" → "0900").
func StripColons(s string) string {
	return strings.ReplaceAll(s, ":", "")
}
