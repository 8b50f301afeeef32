package utils

import (
	"fmt"
	"strings"
	"time"
)

const layoutDate = "2006-01-02"

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ParseISODate accepts RFC3339 timestamps and plain YYYY-MM-DD dates (UTC).
func ParseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(layoutDate, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid ISO8601 date %q", s)
}

// ParseOptionalDate returns nil for blank input.
func ParseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseISODate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate formats time to YYYY-MM-DD; nil renders as "TBD".
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "TBD"
	}
	return t.UTC().Format(layoutDate)
}

// DaysUntil counts whole days from now until t, never negative.
func DaysUntil(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
