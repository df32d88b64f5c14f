package store_test

import (
	"context"
	"errors"
	"testing"

	"calorie/internal/core"
	"calorie/internal/store"
	"calorie/internal/store/memory"
)

func TestStoreDefaults(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New())

	limit, err := s.CalorieLimit(ctx)
	if err != nil || limit != core.DefaultCalorieLimit {
		t.Fatalf("expected default limit %d, got %d (err=%v)", core.DefaultCalorieLimit, limit, err)
	}
	total, err := s.TotalCalories(ctx)
	if err != nil || total != 0 {
		t.Fatalf("expected total 0, got %d (err=%v)", total, err)
	}
	meals, err := s.Meals(ctx)
	if err != nil || meals == nil || len(meals) != 0 {
		t.Fatalf("expected empty non-nil meals, got %v (err=%v)", meals, err)
	}
	workouts, err := s.Workouts(ctx)
	if err != nil || len(workouts) != 0 {
		t.Fatalf("expected no workouts, got %v (err=%v)", workouts, err)
	}

	s = store.New(memory.New(), store.WithDefaultLimit(1800))
	if limit, _ := s.CalorieLimit(ctx); limit != 1800 {
		t.Fatalf("expected configured default 1800, got %d", limit)
	}
}

func TestStoreListsKeepOrder(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New())

	for _, m := range []core.Meal{{ID: "a", Name: "A", Calories: 1}, {ID: "b", Name: "B", Calories: 2}, {ID: "c", Name: "C", Calories: 3}} {
		if err := s.SaveMeal(ctx, m); err != nil {
			t.Fatalf("save meal: %v", err)
		}
	}
	if err := s.RemoveMeal(ctx, "b"); err != nil {
		t.Fatalf("remove meal: %v", err)
	}
	if err := s.RemoveMeal(ctx, "zzz"); err != nil {
		t.Fatalf("remove unknown meal: %v", err)
	}
	meals, _ := s.Meals(ctx)
	if len(meals) != 2 || meals[0].ID != "a" || meals[1].ID != "c" {
		t.Fatalf("unexpected meals: %v", meals)
	}

	_ = s.SaveWorkout(ctx, core.Workout{ID: "w1", Name: "Run", Calories: 400})
	_ = s.SaveWorkout(ctx, core.Workout{ID: "w2", Name: "Swim", Calories: 200})
	_ = s.RemoveWorkout(ctx, "w1")
	workouts, _ := s.Workouts(ctx)
	if len(workouts) != 1 || workouts[0].ID != "w2" {
		t.Fatalf("unexpected workouts: %v", workouts)
	}
}

func TestClearAllKeepsLimit(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := store.New(backend)

	_ = s.SetCalorieLimit(ctx, 1500)
	_ = s.UpdateTotalCalories(ctx, 300)
	_ = s.SaveMeal(ctx, core.Meal{ID: "a", Name: "Eggs", Calories: 300})
	_ = s.SaveWorkout(ctx, core.Workout{ID: "w", Name: "Run", Calories: 0})

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if keys, _ := backend.Keys(ctx, ""); len(keys) != 1 || keys[0] != store.KeyCalorieLimit {
		t.Fatalf("expected only the limit key to survive, got %v", keys)
	}
	if limit, _ := s.CalorieLimit(ctx); limit != 1500 {
		t.Fatalf("expected limit 1500, got %d", limit)
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	a := store.New(backend, store.WithNamespace("alice"))
	b := store.New(backend, store.WithNamespace("bob"))

	_ = a.UpdateTotalCalories(ctx, 500)
	_ = b.UpdateTotalCalories(ctx, 42)
	_ = a.ClearAll(ctx)

	if total, _ := a.TotalCalories(ctx); total != 0 {
		t.Fatalf("alice total should be cleared, got %d", total)
	}
	if total, _ := b.TotalCalories(ctx); total != 42 {
		t.Fatalf("bob total should survive, got %d", total)
	}
	if key := a.Key(store.KeyMeals); key != "alice:meals" {
		t.Fatalf("unexpected namespaced key %q", key)
	}
}

type failingBackend struct{ err error }

func (f failingBackend) Get(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingBackend) Set(context.Context, string, []byte) error        { return f.err }
func (f failingBackend) Delete(context.Context, ...string) error          { return f.err }

func TestStoreWrapsBackendErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	s := store.New(failingBackend{err: boom})
	if _, err := s.CalorieLimit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
	if err := s.SaveMeal(context.Background(), core.Meal{ID: "x"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestStoreRejectsCorruptValues(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	_ = backend.Set(ctx, store.KeyMeals, []byte("{not json"))
	if _, err := store.New(backend).Meals(ctx); err == nil {
		t.Fatal("expected decode error")
	}
}
