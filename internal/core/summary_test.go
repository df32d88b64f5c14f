package core

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	meals := []Meal{{Name: "Eggs", Calories: 300}}
	workouts := []Workout{{Name: "Run", Calories: 400}}

	s := Summarize(2000, -100, meals, workouts)
	if s.Consumed != 300 || s.Burned != 400 {
		t.Fatalf("unexpected sums: %+v", s)
	}
	if s.Remaining != 2100 || s.Status != StatusUnderLimit {
		t.Fatalf("unexpected remaining/status: %+v", s)
	}
	if s.Progress != 0 {
		t.Fatalf("negative total should clamp progress to 0, got %v", s.Progress)
	}

	s = Summarize(0, -100, meals, workouts)
	if s.Remaining != 100 || s.IsOver() {
		t.Fatalf("limit 0 with total -100: %+v", s)
	}

	s = Summarize(2000, 2000, nil, nil)
	if s.Remaining != 0 || !s.IsOver() {
		t.Fatalf("remaining 0 should be over limit: %+v", s)
	}

	s = Summarize(-9223372036854775807, 1000, nil, nil)
	if s.Remaining != math.MinInt64 || !s.IsOver() {
		t.Fatalf("remaining should saturate low: %+v", s)
	}

	s = Summarize(9223372036854775807, -1000, nil, nil)
	if s.Remaining != math.MaxInt64 || s.IsOver() {
		t.Fatalf("remaining should saturate high: %+v", s)
	}
}

func TestProgress(t *testing.T) {
	cases := []struct {
		total, limit int64
		want         float64
	}{
		{0, 2000, 0},
		{500, 2000, 25},
		{2000, 2000, 100},
		{9000, 2000, 100},
		{-300, 2000, 0},
		{100, 0, 100},
		{0, 0, 0},
		{100, -50, 100},
		{-100, -50, 0},
	}
	for _, tc := range cases {
		if got := Progress(tc.total, tc.limit); got != tc.want {
			t.Errorf("Progress(%d, %d) = %v, want %v", tc.total, tc.limit, got, tc.want)
		}
	}
}
