package timewindow

import (
	"testing"
	"time"
)

func TestMinuteOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:00", 540, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"9am", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := MinuteOfDay(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("MinuteOfDay(%q) = %d, %v; want %d", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Fatalf("MinuteOfDay(%q) expected error", c.in)
		}
	}
}

func TestInWindow_NonWrapping(t *testing.T) {
	in := func(now string) bool {
		got, err := InWindow(now, "09:00", "17:00")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return got
	}
	if !in("09:00") {
		t.Fatalf("start is inclusive")
	}
	if in("17:00") {
		t.Fatalf("end is exclusive")
	}
	if !in("12:30") {
		t.Fatalf("midpoint should be inside")
	}
	if in("08:59") || in("17:01") {
		t.Fatalf("outside times should be outside")
	}
}

func TestInWindow_WrapsMidnight(t *testing.T) {
	in := func(now string) bool {
		got, err := InWindow(now, "22:00", "08:00")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return got
	}
	if !in("23:30") || !in("22:00") || !in("03:00") || !in("07:59") {
		t.Fatalf("times inside the wrapped window should match")
	}
	if in("08:00") {
		t.Fatalf("end is exclusive even across midnight")
	}
	if in("12:00") || in("21:59") {
		t.Fatalf("daytime should be outside")
	}
}

func TestInWindow_DegenerateWindow(t *testing.T) {
	got, err := InWindow("10:00", "10:00", "10:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Fatalf("zero-length window should contain nothing")
	}
}

func TestInWindow_InvalidInput(t *testing.T) {
	if _, err := InWindow("25:00", "09:00", "17:00"); err == nil {
		t.Fatalf("expected error for bad time")
	}
}

func TestFormat(t *testing.T) {
	ts := time.Date(2025, 1, 2, 9, 5, 0, 0, time.UTC)
	if got := Format(ts); got != "09:05" {
		t.Fatalf("got %q", got)
	}
}
