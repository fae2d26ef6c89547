// Package timewindow handles the "HH:MM" wall-clock strings used by
// notification preferences: validation, minute-of-day math and the
// possibly midnight-wrapping do-not-disturb window.
package timewindow

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinuteOfDay parses a 24-hour "HH:MM" string into minutes since
// midnight.
func MinuteOfDay(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", hhmm)
	}
	return h*60 + m, nil
}

// Valid reports whether hhmm is a well-formed 24-hour time string.
func Valid(hhmm string) bool {
	_, err := MinuteOfDay(hhmm)
	return err == nil
}

// Format renders a timestamp as the "HH:MM" string preferences use.
func Format(t time.Time) string {
	return t.Format("15:04")
}

// InWindow reports whether t lies inside the half-open interval
// [start, end). When start > end the window wraps past midnight, e.g.
// 22:00-08:00 covers late evening and early morning.
func InWindow(t, start, end string) (bool, error) {
	now, err := MinuteOfDay(t)
	if err != nil {
		return false, err
	}
	s, err := MinuteOfDay(start)
	if err != nil {
		return false, err
	}
	e, err := MinuteOfDay(end)
	if err != nil {
		return false, err
	}
	if s == e {
		// Degenerate window covers nothing.
		return false, nil
	}
	if s < e {
		return now >= s && now < e, nil
	}
	return now >= s || now < e, nil
}
