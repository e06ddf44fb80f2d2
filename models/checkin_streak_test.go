package models

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestContinuousDays_NoRecords(t *testing.T) {
	if got := continuousDays(nil, day(2025, 1, 5)); got != 0 {
		t.Fatalf("expected 0 for empty history, got %d", got)
	}
}

func TestContinuousDays_ConsecutiveRunEndingToday(t *testing.T) {
	today := day(2025, 1, 5)
	// records 2025-01-01..2025-01-05, most recent first
	dates := []time.Time{
		day(2025, 1, 5),
		day(2025, 1, 4),
		day(2025, 1, 3),
		day(2025, 1, 2),
		day(2025, 1, 1),
	}
	if got := continuousDays(dates, today); got != 5 {
		t.Fatalf("expected streak 5, got %d", got)
	}
}

func TestContinuousDays_LastRecordNotToday(t *testing.T) {
	today := day(2025, 1, 10)
	dates := []time.Time{
		day(2025, 1, 7),
		day(2025, 1, 6),
		day(2025, 1, 5),
	}
	// broken chain collapses to 1, regardless of the older run's length
	if got := continuousDays(dates, today); got != 1 {
		t.Fatalf("expected streak 1 when most recent record is stale, got %d", got)
	}
}

func TestContinuousDays_GapStopsTheWalk(t *testing.T) {
	today := day(2025, 1, 10)
	dates := []time.Time{
		day(2025, 1, 10),
		day(2025, 1, 9),
		day(2025, 1, 7), // gap: 2025-01-08 missing
		day(2025, 1, 6),
	}
	if got := continuousDays(dates, today); got != 2 {
		t.Fatalf("expected streak 2 capped at the gap, got %d", got)
	}
}

func TestContinuousDays_SingleRecordToday(t *testing.T) {
	today := day(2025, 3, 1)
	if got := continuousDays([]time.Time{day(2025, 3, 1)}, today); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestContinuousDays_TimestampsWithinDayAreIrrelevant(t *testing.T) {
	today := time.Date(2025, 1, 2, 23, 50, 0, 0, time.Local)
	dates := []time.Time{
		time.Date(2025, 1, 2, 8, 30, 0, 0, time.Local),
		time.Date(2025, 1, 1, 19, 5, 0, 0, time.Local),
	}
	if got := continuousDays(dates, today); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestContinuousDays_CrossesMonthBoundary(t *testing.T) {
	today := day(2025, 3, 2)
	dates := []time.Time{
		day(2025, 3, 2),
		day(2025, 3, 1),
		day(2025, 2, 28),
		day(2025, 2, 27),
	}
	if got := continuousDays(dates, today); got != 4 {
		t.Fatalf("expected 4 across month boundary, got %d", got)
	}
}
