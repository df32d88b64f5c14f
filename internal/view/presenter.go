package view

import (
	"context"

	"calorie/internal/tracker"
)

var _ tracker.Listener = (*Presenter)(nil)

// Presenter is a tracker listener that drives a Display.
type Presenter struct {
	display Display
}

func NewPresenter(d Display) *Presenter {
	return &Presenter{display: d}
}

func (p *Presenter) Notify(_ context.Context, ev tracker.Event) {
	d := p.display
	switch ev.Kind {
	case tracker.EventMealAdded:
		d.AppendMeal(ev.Meal)
		Render(d, ev.Summary)
	case tracker.EventWorkoutAdded:
		d.AppendWorkout(ev.Workout)
		Render(d, ev.Summary)
	case tracker.EventMealRemoved, tracker.EventWorkoutRemoved:
		id, _, _ := ev.Entry()
		d.RemoveItem(ev.EntryKind(), id)
		Render(d, ev.Summary)
	case tracker.EventLimitChanged, tracker.EventRefreshed:
		d.SetLimit(ev.Summary.Limit)
		Render(d, ev.Summary)
	case tracker.EventReset:
		d.ClearItems()
		Render(d, ev.Summary)
	case tracker.EventMealShown:
		d.AppendMeal(ev.Meal)
	case tracker.EventWorkoutShown:
		d.AppendWorkout(ev.Workout)
	}
}
