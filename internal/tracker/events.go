package tracker

import "calorie/internal/core"

const (
	EventMealAdded      EventKind = "meal_added"
	EventWorkoutAdded   EventKind = "workout_added"
	EventMealRemoved    EventKind = "meal_removed"
	EventWorkoutRemoved EventKind = "workout_removed"
	EventLimitChanged   EventKind = "limit_changed"
	EventReset          EventKind = "reset"
	EventMealShown      EventKind = "meal_shown"
	EventWorkoutShown   EventKind = "workout_shown"
	EventRefreshed      EventKind = "refreshed"
)

type EventKind string

// Event describes one committed change. Meal is set for meal events and
// Workout for workout events; Summary always reflects the state after it.
type Event struct {
	Kind    EventKind
	Meal    core.Meal
	Workout core.Workout
	Summary core.Summary
}

func (k EventKind) String() string {
	return string(k)
}

// Mutates reports whether the event changed tracker state, as opposed to
// re-announcing existing entries.
func (k EventKind) Mutates() bool {
	switch k {
	case EventMealShown, EventWorkoutShown, EventRefreshed:
		return false
	default:
		return true
	}
}

// EntryKind returns the entry kind an event refers to, or "" for limit,
// reset and refresh events.
func (ev Event) EntryKind() core.EntryKind {
	switch ev.Kind {
	case EventMealAdded, EventMealRemoved, EventMealShown:
		return core.KindMeal
	case EventWorkoutAdded, EventWorkoutRemoved, EventWorkoutShown:
		return core.KindWorkout
	default:
		return ""
	}
}

// Entry returns id, name and calories of the referenced entry, if any.
func (ev Event) Entry() (id, name string, calories int64) {
	switch ev.EntryKind() {
	case core.KindMeal:
		return ev.Meal.ID, ev.Meal.Name, ev.Meal.Calories
	case core.KindWorkout:
		return ev.Workout.ID, ev.Workout.Name, ev.Workout.Calories
	default:
		return "", "", 0
	}
}
