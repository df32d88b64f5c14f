package tracker

import (
	"context"

	"calorie/internal/core"
)

// Store is the persistence the tracker writes through to. Every call is
// synchronous; *store.Store is the production implementation.
type Store interface {
	CalorieLimit(ctx context.Context) (int64, error)
	SetCalorieLimit(ctx context.Context, limit int64) error
	TotalCalories(ctx context.Context) (int64, error)
	UpdateTotalCalories(ctx context.Context, total int64) error

	Meals(ctx context.Context) ([]core.Meal, error)
	SaveMeal(ctx context.Context, meal core.Meal) error
	RemoveMeal(ctx context.Context, id string) error
	ReplaceMeals(ctx context.Context, meals []core.Meal) error

	Workouts(ctx context.Context) ([]core.Workout, error)
	SaveWorkout(ctx context.Context, workout core.Workout) error
	RemoveWorkout(ctx context.Context, id string) error
	ReplaceWorkouts(ctx context.Context, workouts []core.Workout) error

	ClearAll(ctx context.Context) error
}

// Listener receives an Event after every state change the tracker commits.
type Listener interface {
	Notify(ctx context.Context, ev Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ctx context.Context, ev Event)

func (f ListenerFunc) Notify(ctx context.Context, ev Event) {
	f(ctx, ev)
}
