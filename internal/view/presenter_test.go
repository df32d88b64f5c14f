package view_test

import (
	"context"
	"slices"
	"testing"

	"calorie/internal/core"
	"calorie/internal/store"
	"calorie/internal/store/memory"
	"calorie/internal/tracker"
	"calorie/internal/view"
)

func setup(t *testing.T) (*tracker.Tracker, *view.Recorder) {
	t.Helper()
	rec := &view.Recorder{}
	tr, err := tracker.New(context.Background(), store.New(memory.New()),
		tracker.WithListener(view.NewPresenter(rec)))
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return tr, rec
}

func TestPresenterAddRendersCardAndFigures(t *testing.T) {
	ctx := context.Background()
	tr, rec := setup(t)

	meal, _ := core.NewMeal("Eggs", 300)
	if err := tr.AddMeal(ctx, meal); err != nil {
		t.Fatalf("add meal: %v", err)
	}

	want := []string{
		"append-meal " + meal.ID,
		"set-total 300",
		"set-consumed 300",
		"set-burned 0",
		"set-remaining 1700 over=false",
		"set-progress 15",
	}
	if !slices.Equal(rec.Commands, want) {
		t.Fatalf("commands:\n got %v\nwant %v", rec.Commands, want)
	}
}

func TestPresenterMirrorsTracker(t *testing.T) {
	ctx := context.Background()
	tr, rec := setup(t)

	_ = tr.SetLimit(ctx, 500)
	eggs, _ := core.NewMeal("Eggs", 300)
	cake, _ := core.NewMeal("Cake", 400)
	run, _ := core.NewWorkout("Run", 100)
	_ = tr.AddMeal(ctx, eggs)
	_ = tr.AddMeal(ctx, cake)
	_ = tr.AddWorkout(ctx, run)

	if rec.Limit != 500 || rec.Total != 600 || rec.Remaining != -100 || !rec.Over || rec.Progress != 100 {
		t.Fatalf("unexpected figures: %+v", rec)
	}

	_ = tr.RemoveMeal(ctx, cake.ID)
	if len(rec.Meals) != 1 || rec.Meals[0].ID != eggs.ID {
		t.Fatalf("card not removed: %+v", rec.Meals)
	}
	if rec.Remaining != 300 || rec.Over {
		t.Fatalf("expected 300 remaining under limit, got %d over=%t", rec.Remaining, rec.Over)
	}

	_ = tr.Reset(ctx)
	if len(rec.Meals) != 0 || len(rec.Workouts) != 0 || rec.Total != 0 || rec.Limit != 500 {
		t.Fatalf("unexpected state after reset: %+v", rec)
	}
}

func TestPresenterLoadItemsOnlyAppends(t *testing.T) {
	ctx := context.Background()
	tr, _ := setup(t)
	m, _ := core.NewMeal("Soup", 120)
	w, _ := core.NewWorkout("Walk", 80)
	_ = tr.AddMeal(ctx, m)
	_ = tr.AddWorkout(ctx, w)

	fresh := &view.Recorder{}
	tr.Subscribe(view.NewPresenter(fresh))
	tr.LoadItems(ctx)

	want := []string{"append-meal " + m.ID, "append-workout " + w.ID}
	if !slices.Equal(fresh.Commands, want) {
		t.Fatalf("commands:\n got %v\nwant %v", fresh.Commands, want)
	}

	fresh.Commands = nil
	tr.Refresh(ctx)
	if len(fresh.Commands) == 0 || fresh.Commands[0] != "set-limit 2000" {
		t.Fatalf("refresh should start with set-limit, got %v", fresh.Commands)
	}
	if fresh.Total != 40 {
		t.Fatalf("expected total 40, got %d", fresh.Total)
	}
}
