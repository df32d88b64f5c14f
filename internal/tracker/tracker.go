// Package tracker keeps the calorie limit, the running total and the meal and
// workout lists consistent with the store, and tells listeners about every
// committed change.
//
// A Tracker is not safe for concurrent use. Callers that share one across
// goroutines serialise access themselves (see package session).
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"calorie/internal/core"
)

type Tracker struct {
	store  Store
	logger *slog.Logger

	limit    int64
	total    int64
	meals    []core.Meal
	workouts []core.Workout

	listeners []subscription
	nextSub   int
}

type subscription struct {
	id int
	l  Listener
}

// Option customises a Tracker.
type Option func(*Tracker)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithListener subscribes l for the tracker's lifetime.
func WithListener(l Listener) Option {
	return func(t *Tracker) {
		t.Subscribe(l)
	}
}

// New hydrates a tracker from st. The total is loaded as stored, not
// recomputed, so an inconsistent store shows up as drift in the logs.
func New(ctx context.Context, st Store, opts ...Option) (*Tracker, error) {
	t := &Tracker{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}

	var err error
	if t.limit, err = st.CalorieLimit(ctx); err != nil {
		return nil, fmt.Errorf("load calorie limit: %w", err)
	}
	if t.total, err = st.TotalCalories(ctx); err != nil {
		return nil, fmt.Errorf("load total calories: %w", err)
	}
	if t.meals, err = st.Meals(ctx); err != nil {
		return nil, fmt.Errorf("load meals: %w", err)
	}
	if t.workouts, err = st.Workouts(ctx); err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}

	if expected := core.SumMeals(t.meals) - core.SumWorkouts(t.workouts); expected != t.total {
		t.logger.WarnContext(ctx, "Stored total does not match entries",
			"stored_total", t.total,
			"computed_total", expected,
			"meals", len(t.meals),
			"workouts", len(t.workouts))
	}

	return t, nil
}

// Subscribe registers l and returns a function that removes it again.
func (t *Tracker) Subscribe(l Listener) (unsubscribe func()) {
	id := t.nextSub
	t.nextSub++
	t.listeners = append(t.listeners, subscription{id: id, l: l})
	return func() {
		t.listeners = slices.DeleteFunc(t.listeners, func(s subscription) bool { return s.id == id })
	}
}

// AddMeal records meal and adds its calories to the total. The list is
// written before the total; if the total cannot be written the list is put
// back so the store never holds a total that disagrees with its entries.
func (t *Tracker) AddMeal(ctx context.Context, meal core.Meal) error {
	if err := meal.Validate(); err != nil {
		return err
	}
	total, err := core.AddCalories(t.total, meal.Calories)
	if err != nil {
		return err
	}
	if err := t.store.SaveMeal(ctx, meal); err != nil {
		return fmt.Errorf("add meal: %w", err)
	}
	if err := t.store.UpdateTotalCalories(ctx, total); err != nil {
		t.rollback(ctx, "add meal", func() error { return t.store.ReplaceMeals(ctx, t.meals) })
		return fmt.Errorf("add meal: %w", err)
	}
	t.total = total
	t.meals = append(t.meals, meal)
	t.emit(ctx, Event{Kind: EventMealAdded, Meal: meal})
	return nil
}

// AddWorkout records workout and subtracts its calories from the total.
func (t *Tracker) AddWorkout(ctx context.Context, workout core.Workout) error {
	if err := workout.Validate(); err != nil {
		return err
	}
	total, err := core.AddCalories(t.total, -workout.Calories)
	if err != nil {
		return err
	}
	if err := t.store.SaveWorkout(ctx, workout); err != nil {
		return fmt.Errorf("add workout: %w", err)
	}
	if err := t.store.UpdateTotalCalories(ctx, total); err != nil {
		t.rollback(ctx, "add workout", func() error { return t.store.ReplaceWorkouts(ctx, t.workouts) })
		return fmt.Errorf("add workout: %w", err)
	}
	t.total = total
	t.workouts = append(t.workouts, workout)
	t.emit(ctx, Event{Kind: EventWorkoutAdded, Workout: workout})
	return nil
}

// RemoveMeal drops the meal with the given id. An unknown id is a no-op.
func (t *Tracker) RemoveMeal(ctx context.Context, id string) error {
	i := slices.IndexFunc(t.meals, func(m core.Meal) bool { return m.ID == id })
	if i < 0 {
		return nil
	}
	meal := t.meals[i]
	total := t.total - meal.Calories
	if err := t.store.RemoveMeal(ctx, id); err != nil {
		return fmt.Errorf("remove meal: %w", err)
	}
	if err := t.store.UpdateTotalCalories(ctx, total); err != nil {
		t.rollback(ctx, "remove meal", func() error { return t.store.ReplaceMeals(ctx, t.meals) })
		return fmt.Errorf("remove meal: %w", err)
	}
	t.total = total
	t.meals = slices.Delete(t.meals, i, i+1)
	t.emit(ctx, Event{Kind: EventMealRemoved, Meal: meal})
	return nil
}

// RemoveWorkout drops the workout with the given id. An unknown id is a no-op.
func (t *Tracker) RemoveWorkout(ctx context.Context, id string) error {
	i := slices.IndexFunc(t.workouts, func(w core.Workout) bool { return w.ID == id })
	if i < 0 {
		return nil
	}
	workout := t.workouts[i]
	total := t.total + workout.Calories
	if err := t.store.RemoveWorkout(ctx, id); err != nil {
		return fmt.Errorf("remove workout: %w", err)
	}
	if err := t.store.UpdateTotalCalories(ctx, total); err != nil {
		t.rollback(ctx, "remove workout", func() error { return t.store.ReplaceWorkouts(ctx, t.workouts) })
		return fmt.Errorf("remove workout: %w", err)
	}
	t.total = total
	t.workouts = slices.Delete(t.workouts, i, i+1)
	t.emit(ctx, Event{Kind: EventWorkoutRemoved, Workout: workout})
	return nil
}

// rollback restores a list after its total could not be written. A failed
// restore is logged; the next hydration reports the drift.
func (t *Tracker) rollback(ctx context.Context, op string, restore func() error) {
	if err := restore(); err != nil {
		t.logger.ErrorContext(ctx, "Failed to restore list after total write failed",
			"op", op,
			"error", err)
	}
}

// Reset empties both lists and zeroes the total, in memory and in the
// store. The calorie limit is kept.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	t.total = 0
	t.meals = nil
	t.workouts = nil
	t.emit(ctx, Event{Kind: EventReset})
	return nil
}

// SetLimit replaces the daily calorie limit. Any value is accepted.
func (t *Tracker) SetLimit(ctx context.Context, limit int64) error {
	if err := t.store.SetCalorieLimit(ctx, limit); err != nil {
		return fmt.Errorf("set limit: %w", err)
	}
	t.limit = limit
	t.emit(ctx, Event{Kind: EventLimitChanged})
	return nil
}

// LoadItems announces every stored meal, then every stored workout, so a
// fresh display can draw them. Nothing is mutated.
func (t *Tracker) LoadItems(ctx context.Context) {
	for _, m := range t.meals {
		t.emit(ctx, Event{Kind: EventMealShown, Meal: m})
	}
	for _, w := range t.workouts {
		t.emit(ctx, Event{Kind: EventWorkoutShown, Workout: w})
	}
}

// Refresh announces the current figures without changing anything.
func (t *Tracker) Refresh(ctx context.Context) {
	t.emit(ctx, Event{Kind: EventRefreshed})
}

func (t *Tracker) Limit() int64 { return t.limit }

func (t *Tracker) Total() int64 { return t.total }

// Meals returns a copy of the meals in insertion order.
func (t *Tracker) Meals() []core.Meal { return slices.Clone(t.meals) }

// Workouts returns a copy of the workouts in insertion order.
func (t *Tracker) Workouts() []core.Workout { return slices.Clone(t.workouts) }

func (t *Tracker) Summary() core.Summary {
	return core.Summarize(t.limit, t.total, t.meals, t.workouts)
}

// Snapshot is a copy of the full tracker state.
type Snapshot struct {
	Summary  core.Summary   `json:"summary"`
	Meals    []core.Meal    `json:"meals"`
	Workouts []core.Workout `json:"workouts"`
}

func (t *Tracker) Snapshot() Snapshot {
	meals := t.Meals()
	if meals == nil {
		meals = []core.Meal{}
	}
	workouts := t.Workouts()
	if workouts == nil {
		workouts = []core.Workout{}
	}
	return Snapshot{Summary: t.Summary(), Meals: meals, Workouts: workouts}
}

func (t *Tracker) emit(ctx context.Context, ev Event) {
	ev.Summary = t.Summary()
	if ev.Kind.Mutates() {
		t.logger.DebugContext(ctx, "Tracker state changed",
			"event", ev.Kind.String(),
			"total", ev.Summary.Total,
			"limit", ev.Summary.Limit)
	}
	for _, s := range slices.Clone(t.listeners) {
		s.l.Notify(ctx, ev)
	}
}
