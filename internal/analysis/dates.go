// Package analysis implements the two analytical modes over hotel rate
// observations: the optimal multi-night streak builder and the historical
// anomaly detector. Everything here is a pure function over in-memory
// slices; storage and transport live in the calling layers.
package analysis

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD calendar date. No timezone component: all
// date arithmetic in this package operates on calendar days, not instants,
// so a streak never shifts by a night across timezones.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

func formatDay(t time.Time) string {
	return t.Format(dayLayout)
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// dayOfWeek returns 0-6 with Sunday = 0, matching the stored
// hotel/day-of-week baseline keys.
func dayOfWeek(t time.Time) int {
	return int(t.Weekday())
}
