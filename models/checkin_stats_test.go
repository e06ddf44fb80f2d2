package models

import (
	"testing"
	"time"
)

func recordOn(ts time.Time) *CheckinRecord {
	return &CheckinRecord{CheckinTime: ts, CheckinDate: ts}
}

func TestDistinctDays_DeduplicatesSameDay(t *testing.T) {
	records := []*CheckinRecord{
		recordOn(time.Date(2025, 1, 1, 8, 0, 0, 0, time.Local)),
		recordOn(time.Date(2025, 1, 1, 18, 0, 0, 0, time.Local)),
		recordOn(time.Date(2025, 1, 2, 9, 0, 0, 0, time.Local)),
	}
	days := distinctDays(records)
	if len(days) != 2 {
		t.Fatalf("expected 2 distinct days, got %d (%v)", len(days), days)
	}
	if days[0] != "2025-01-01" || days[1] != "2025-01-02" {
		t.Fatalf("unexpected day keys: %v", days)
	}
}

func TestDistinctDays_Empty(t *testing.T) {
	if got := distinctDays(nil); len(got) != 0 {
		t.Fatalf("expected no days, got %v", got)
	}
}

func TestMonthlyRate_TwoDecimalFraction(t *testing.T) {
	cases := []struct {
		days     int
		total    int
		expected string
	}{
		{15, 30, "0.5"},
		{15, 31, "0.48"},
		{31, 31, "1"},
		{0, 31, "0"},
		{1, 28, "0.04"},
	}
	for _, tc := range cases {
		if got := monthlyRate(tc.days, tc.total).String(); got != tc.expected {
			t.Fatalf("monthlyRate(%d, %d) expected %s, got %s", tc.days, tc.total, tc.expected, got)
		}
	}
}

func TestMonthlyRate_ZeroTotalDays(t *testing.T) {
	if got := monthlyRate(5, 0); !got.IsZero() {
		t.Fatalf("expected zero rate for zero total days, got %s", got)
	}
}

func TestMonthlyRatePercent_OneDecimal(t *testing.T) {
	cases := []struct {
		days     int
		total    int
		expected string
	}{
		{26, 31, "83.9%"},
		{30, 30, "100.0%"},
		{0, 31, "0.0%"},
		{7, 28, "25.0%"},
		{5, 0, "0.0%"},
	}
	for _, tc := range cases {
		if got := monthlyRatePercent(tc.days, tc.total); got != tc.expected {
			t.Fatalf("monthlyRatePercent(%d, %d) expected %s, got %s", tc.days, tc.total, tc.expected, got)
		}
	}
}
