// Package service contains the aggregation compute and the win-rate query
// logic. The weekly compute is pure Go over ledger entries so it can be
// tested without a database.
package service

import (
	"fmt"
	"time"
)

// WeekStartOf returns the Monday (UTC, midnight) of the ISO week containing t.
func WeekStartOf(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekLabel formats a week start as its ISO label, e.g. "2026-W34".
func WeekLabel(weekStart time.Time) string {
	year, week := weekStart.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ParseWeekLabel parses an ISO week label ("2026-W34") into the week's
// Monday.
func ParseWeekLabel(label string) (time.Time, error) {
	var year, week int
	if _, err := fmt.Sscanf(label, "%d-W%d", &year, &week); err != nil {
		return time.Time{}, fmt.Errorf("invalid week label %q", label)
	}
	if week < 1 || week > 53 {
		return time.Time{}, fmt.Errorf("invalid week number %d", week)
	}

	// January 4th always falls in ISO week 1.
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	return WeekStartOf(jan4).AddDate(0, 0, (week-1)*7), nil
}
