package utils

import (
	"fmt"
	"strings"
	"time"
)

var expiryDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// ParseExpiryDate parses an option expiration date. Only the calendar date is
// kept; any time-of-day component is discarded.
func ParseExpiryDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("ParseExpiryDate: empty date")
	}

	for _, layout := range expiryDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("ParseExpiryDate: unsupported date format %q", value)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the number of calendar days from `from` to `to`,
// negative when `to` is earlier.
func DaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}
