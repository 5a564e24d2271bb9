package models

import (
	"fmt"
	"regexp"
	"time"
)

var (
	dailyCyclePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	weeklyCyclePattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)
)

// CycleIDForTime buckets an instant into a cycle identifier for the given
// cadence: "2006-01-02" for daily deployments, "2006-W01" (ISO week) for
// weekly ones.
func CycleIDForTime(t time.Time, cadence string) string {
	if cadence == CadenceDaily {
		return t.UTC().Format("2006-01-02")
	}
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// CycleWindow returns the [start, end) wall-clock window of a cycle.
// Both cadence formats are accepted so that records written under a previous
// cadence setting still parse during sweeps.
func CycleWindow(cycleID string) (time.Time, time.Time, error) {
	if dailyCyclePattern.MatchString(cycleID) {
		start, err := time.Parse("2006-01-02", cycleID)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("malformed cycleId %q: %v", cycleID, err)
		}
		return start, start.Add(24 * time.Hour), nil
	}

	if m := weeklyCyclePattern.FindStringSubmatch(cycleID); m != nil {
		var year, week int
		fmt.Sscanf(m[1], "%d", &year)
		fmt.Sscanf(m[2], "%d", &week)
		if week < 1 || week > 53 {
			return time.Time{}, time.Time{}, fmt.Errorf("malformed cycleId %q: week out of range", cycleID)
		}
		start := isoWeekStart(year, week)
		if y, w := start.ISOWeek(); y != year || w != week {
			// Week 53 only exists in long ISO years.
			return time.Time{}, time.Time{}, fmt.Errorf("malformed cycleId %q: no such week in %d", cycleID, year)
		}
		return start, start.Add(7 * 24 * time.Hour), nil
	}

	return time.Time{}, time.Time{}, fmt.Errorf("malformed cycleId %q", cycleID)
}

// isoWeekStart returns the Monday starting the given ISO week.
func isoWeekStart(year, week int) time.Time {
	// January 4th always falls in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}
