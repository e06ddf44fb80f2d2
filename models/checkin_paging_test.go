package models

import "testing"

func TestClampPageNum(t *testing.T) {
	cases := []struct {
		in       int
		expected int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{42, 42},
	}
	for _, tc := range cases {
		if got := clampPageNum(tc.in); got != tc.expected {
			t.Fatalf("clampPageNum(%d) expected %d, got %d", tc.in, tc.expected, got)
		}
	}
}

func TestClampPageSize(t *testing.T) {
	cases := []struct {
		in       int
		expected int
	}{
		{-1, 1},
		{0, 1},
		{1, 1},
		{50, 50},
		{100, 100},
		{1000, 100},
	}
	for _, tc := range cases {
		if got := clampPageSize(tc.in); got != tc.expected {
			t.Fatalf("clampPageSize(%d) expected %d, got %d", tc.in, tc.expected, got)
		}
	}
}
