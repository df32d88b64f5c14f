package view

import (
	"fmt"

	"calorie/internal/core"
)

var _ Display = (*Recorder)(nil)

// Recorder is a Display that keeps the last value of every figure and the
// visible cards, plus a log of the commands it received.
type Recorder struct {
	Limit     int64
	Total     int64
	Consumed  int64
	Burned    int64
	Remaining int64
	Over      bool
	Progress  float64
	Meals     []core.Meal
	Workouts  []core.Workout

	Commands []string
}

func (r *Recorder) SetLimit(limit int64) {
	r.Limit = limit
	r.log("set-limit %d", limit)
}

func (r *Recorder) SetTotal(total int64) {
	r.Total = total
	r.log("set-total %d", total)
}

func (r *Recorder) SetConsumed(consumed int64) {
	r.Consumed = consumed
	r.log("set-consumed %d", consumed)
}

func (r *Recorder) SetBurned(burned int64) {
	r.Burned = burned
	r.log("set-burned %d", burned)
}

func (r *Recorder) SetRemaining(remaining int64, over bool) {
	r.Remaining, r.Over = remaining, over
	r.log("set-remaining %d over=%t", remaining, over)
}

func (r *Recorder) SetProgress(percent float64) {
	r.Progress = percent
	r.log("set-progress %.0f", percent)
}

func (r *Recorder) AppendMeal(meal core.Meal) {
	r.Meals = append(r.Meals, meal)
	r.log("append-meal %s", meal.ID)
}

func (r *Recorder) AppendWorkout(workout core.Workout) {
	r.Workouts = append(r.Workouts, workout)
	r.log("append-workout %s", workout.ID)
}

func (r *Recorder) RemoveItem(kind core.EntryKind, id string) {
	switch kind {
	case core.KindMeal:
		for i, m := range r.Meals {
			if m.ID == id {
				r.Meals = append(r.Meals[:i], r.Meals[i+1:]...)
				break
			}
		}
	case core.KindWorkout:
		for i, w := range r.Workouts {
			if w.ID == id {
				r.Workouts = append(r.Workouts[:i], r.Workouts[i+1:]...)
				break
			}
		}
	}
	r.log("remove-item %s %s", kind, id)
}

func (r *Recorder) ClearItems() {
	r.Meals, r.Workouts = nil, nil
	r.log("clear-items")
}

func (r *Recorder) log(format string, args ...any) {
	r.Commands = append(r.Commands, fmt.Sprintf(format, args...))
}
