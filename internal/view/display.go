// Package view translates tracker events into display commands. The display
// surface itself is opaque: HTML fragments, terminal lines or a test recorder.
package view

import "calorie/internal/core"

// Display is the set of commands a rendering surface accepts.
type Display interface {
	SetLimit(limit int64)
	SetTotal(total int64)
	SetConsumed(consumed int64)
	SetBurned(burned int64)
	// SetRemaining shows limit minus total; over flags the severity indicator.
	SetRemaining(remaining int64, over bool)
	SetProgress(percent float64)

	AppendMeal(meal core.Meal)
	AppendWorkout(workout core.Workout)
	RemoveItem(kind core.EntryKind, id string)
	ClearItems()
}

// Render pushes every derived figure of s to d.
func Render(d Display, s core.Summary) {
	d.SetTotal(s.Total)
	d.SetConsumed(s.Consumed)
	d.SetBurned(s.Burned)
	d.SetRemaining(s.Remaining, s.IsOver())
	d.SetProgress(s.Progress)
}
