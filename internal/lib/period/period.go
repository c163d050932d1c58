package period

import "time"

// WeekStart returns the Monday of the week ref falls in, truncated to UTC
// midnight. Weeks are identified by this date everywhere in the rollups.
func WeekStart(ref time.Time) time.Time {
	ref = ref.UTC()
	offset := (int(ref.Weekday()) + 6) % 7 // Monday = 0
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}
