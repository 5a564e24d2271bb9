package models

import (
	"testing"
	"time"
)

func TestCycleIDForTime(t *testing.T) {
	wednesday := time.Date(2025, time.October, 1, 15, 30, 0, 0, time.UTC)

	if got := CycleIDForTime(wednesday, CadenceDaily); got != "2025-10-01" {
		t.Errorf("daily cycle id = %q, want 2025-10-01", got)
	}
	if got := CycleIDForTime(wednesday, CadenceWeekly); got != "2025-W40" {
		t.Errorf("weekly cycle id = %q, want 2025-W40", got)
	}

	// ISO week years roll over independently of calendar years.
	newYearsEve := time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)
	if got := CycleIDForTime(newYearsEve, CadenceWeekly); got != "2025-W01" {
		t.Errorf("weekly cycle id at year boundary = %q, want 2025-W01", got)
	}
}

func TestCycleWindowDaily(t *testing.T) {
	start, end, err := CycleWindow("2025-09-29")
	if err != nil {
		t.Fatalf("CycleWindow: %v", err)
	}
	wantStart := time.Date(2025, time.September, 29, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantStart.Add(24 * time.Hour)) {
		t.Errorf("end = %v, want %v", end, wantStart.Add(24*time.Hour))
	}
}

func TestCycleWindowWeekly(t *testing.T) {
	start, end, err := CycleWindow("2025-W40")
	if err != nil {
		t.Fatalf("CycleWindow: %v", err)
	}
	wantStart := time.Date(2025, time.September, 29, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if start.Weekday() != time.Monday {
		t.Errorf("weekly windows must start on Monday, got %v", start.Weekday())
	}
	if !end.Equal(wantStart.Add(7 * 24 * time.Hour)) {
		t.Errorf("end = %v, want %v", end, wantStart.Add(7*24*time.Hour))
	}

	// The window must round-trip: any instant inside it maps back to the id.
	if got := CycleIDForTime(start.Add(3*24*time.Hour), CadenceWeekly); got != "2025-W40" {
		t.Errorf("instant inside window maps to %q, want 2025-W40", got)
	}
}

func TestCycleWindowWeek53(t *testing.T) {
	// 2020 is a long ISO year; 2025 is not.
	if _, _, err := CycleWindow("2020-W53"); err != nil {
		t.Errorf("2020-W53 should exist: %v", err)
	}
	if _, _, err := CycleWindow("2025-W53"); err == nil {
		t.Error("2025-W53 should be rejected, 2025 has 52 ISO weeks")
	}
}

func TestCycleWindowMalformed(t *testing.T) {
	for _, id := range []string{"", "20251001", "2025-13-40", "2025-W00", "2025-W99", "week-forty", "2025_W40"} {
		if _, _, err := CycleWindow(id); err == nil {
			t.Errorf("CycleWindow(%q) should fail", id)
		}
	}
}
