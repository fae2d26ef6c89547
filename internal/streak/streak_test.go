package streak

import (
	"testing"
	"time"
)

var today = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func TestCurrent_ThreeConsecutiveDays(t *testing.T) {
	acts := []time.Time{daysAgo(0), daysAgo(1), daysAgo(2)}
	if got := Current(acts, today); got != 3 {
		t.Fatalf("expected streak 3, got %d", got)
	}
}

func TestCurrent_GapYesterdayBreaksStreak(t *testing.T) {
	acts := []time.Time{daysAgo(2)}
	if got := Current(acts, today); got != 0 {
		t.Fatalf("expected streak 0 with a gap at yesterday, got %d", got)
	}
	if got := DaysSinceLast(acts, today); got != 2 {
		t.Fatalf("expected days_since_last 2, got %d", got)
	}
}

func TestCurrent_NoActivityToday_CountsFromYesterday(t *testing.T) {
	acts := []time.Time{daysAgo(1), daysAgo(2)}
	if got := Current(acts, today); got != 2 {
		t.Fatalf("expected streak retained until today elapses, got %d", got)
	}
}

func TestCurrent_MultipleEventsSameDayCountOnce(t *testing.T) {
	acts := []time.Time{
		daysAgo(0), daysAgo(0).Add(time.Hour), daysAgo(0).Add(2 * time.Hour),
		daysAgo(1),
	}
	if got := Current(acts, today); got != 2 {
		t.Fatalf("expected streak 2, got %d", got)
	}
}

func TestCurrent_Idempotent(t *testing.T) {
	acts := []time.Time{daysAgo(0), daysAgo(1), daysAgo(3)}
	first := Current(acts, today)
	second := Current(acts, today)
	if first != second {
		t.Fatalf("two calls with no new activity diverged: %d vs %d", first, second)
	}
}

func TestCurrent_Empty(t *testing.T) {
	if got := Current(nil, today); got != 0 {
		t.Fatalf("expected 0 for no activity, got %d", got)
	}
}

func TestDaysSinceLast_Today(t *testing.T) {
	acts := []time.Time{daysAgo(0)}
	if got := DaysSinceLast(acts, today); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestDaysSinceLast_NoActivitySentinel(t *testing.T) {
	if got := DaysSinceLast(nil, today); got != NoActivitySentinel {
		t.Fatalf("expected sentinel, got %d", got)
	}
}

func TestAdvance_OncePerCalendarDay(t *testing.T) {
	got := Advance(3, DayKey(today), today)
	if got != 3 {
		t.Fatalf("second award on same day must not increment: got %d", got)
	}
}

func TestAdvance_ConsecutiveDay(t *testing.T) {
	got := Advance(3, DayKey(daysAgo(1)), today)
	if got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}

func TestAdvance_BrokenStreakRestartsAtOne(t *testing.T) {
	got := Advance(7, DayKey(daysAgo(3)), today)
	if got != 1 {
		t.Fatalf("expected restart at 1, got %d", got)
	}
	if got := Advance(0, "", today); got != 1 {
		t.Fatalf("expected first activity to start streak at 1, got %d", got)
	}
}
