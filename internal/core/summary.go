package core

import "math"

const (
	StatusUnderLimit Status = "under-limit"
	StatusOverLimit  Status = "over-limit"
)

// Status drives the severity indicator of the remaining figure.
type Status string

// Summary holds the derived figures shown next to the entry lists.
type Summary struct {
	Limit     int64   `json:"limit"`
	Total     int64   `json:"total"`
	Consumed  int64   `json:"consumed"`
	Burned    int64   `json:"burned"`
	Remaining int64   `json:"remaining"`
	Progress  float64 `json:"progress"`
	Status    Status  `json:"status"`
}

// Summarize computes the display figures from the tracker state.
// Nothing here is cached; callers recompute after every mutation.
func Summarize(limit, total int64, meals []Meal, workouts []Workout) Summary {
	remaining := remainingCalories(limit, total)
	status := StatusUnderLimit
	if remaining <= 0 {
		status = StatusOverLimit
	}
	return Summary{
		Limit:     limit,
		Total:     total,
		Consumed:  SumMeals(meals),
		Burned:    SumWorkouts(workouts),
		Remaining: remaining,
		Progress:  Progress(total, limit),
		Status:    status,
	}
}

// remainingCalories returns limit-total, saturated at the int64 bounds.
func remainingCalories(limit, total int64) int64 {
	r := limit - total
	if (limit >= 0) != (total >= 0) && (r >= 0) != (limit >= 0) {
		if limit >= 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	return r
}

// Progress returns total as a percentage of limit, clamped to [0, 100].
// A non-positive limit yields 100 when anything was eaten and 0 otherwise.
func Progress(total, limit int64) float64 {
	if limit <= 0 {
		if total > 0 {
			return 100
		}
		return 0
	}
	pct := float64(total) / float64(limit) * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// IsOver reports whether the remaining figure should be flagged.
func (s Summary) IsOver() bool {
	return s.Status == StatusOverLimit
}
