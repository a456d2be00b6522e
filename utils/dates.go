package utils

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate accepts "2006-01-02" or a full RFC3339 timestamp and returns the UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NormalizeDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, Validation("invalid date %q", s)
	}
	return NormalizeDate(t), nil
}

// NormalizeDate truncates t to UTC midnight.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeInstant converts t to UTC at the millisecond precision the store keeps.
func NormalizeInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// FormatDate renders the calendar day of t.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
