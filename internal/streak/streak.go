// Package streak derives learning streaks from the user activity log.
// It is the single definition of streak semantics: the scheduler, the
// dashboard and the gamification counters all call into it.
package streak

import "time"

// NoActivitySentinel is reported by DaysSinceLast when the window holds
// no activity at all.
const NoActivitySentinel = 9999

// DayKey buckets a timestamp into its calendar date, in the timestamp's
// own location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// BucketByDay collapses activity timestamps into the set of calendar
// days that saw at least one event.
func BucketByDay(activities []time.Time) map[string]bool {
	days := make(map[string]bool, len(activities))
	for _, t := range activities {
		days[DayKey(t)] = true
	}
	return days
}

// Current counts consecutive days with activity, ending today or
// yesterday. A user keeps their streak displayed until a full day
// elapses without activity: when today is empty the walk restarts from
// yesterday.
func Current(activities []time.Time, today time.Time) int {
	days := BucketByDay(activities)
	if len(days) == 0 {
		return 0
	}
	cursor := today
	if !days[DayKey(cursor)] {
		cursor = cursor.AddDate(0, 0, -1)
		if !days[DayKey(cursor)] {
			return 0
		}
	}
	count := 0
	for days[DayKey(cursor)] {
		count++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return count
}

// DaysSinceLast returns whole days between today and the most recent
// activity day.
func DaysSinceLast(activities []time.Time, today time.Time) int {
	days := BucketByDay(activities)
	if len(days) == 0 {
		return NoActivitySentinel
	}
	todayKey := DayKey(today)
	var latest string
	for d := range days {
		if d > latest {
			latest = d
		}
	}
	if latest >= todayKey {
		return 0
	}
	// Walk back day by day; the window is short so this stays cheap.
	cursor := today
	for n := 1; n <= 366; n++ {
		cursor = cursor.AddDate(0, 0, -1)
		if DayKey(cursor) == latest {
			return n
		}
	}
	return NoActivitySentinel
}

// Advance applies one qualifying activity on `today` to a stored streak
// counter whose last activity fell on lastActivityDate (a DayKey, or ""
// when none). The streak increments at most once per calendar day.
func Advance(current int, lastActivityDate string, today time.Time) int {
	todayKey := DayKey(today)
	switch lastActivityDate {
	case todayKey:
		return current
	case DayKey(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}
