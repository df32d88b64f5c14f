package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"calorie/internal/amqp"
	"calorie/internal/core"
	"calorie/internal/session"
	"calorie/internal/store/memory"
	"calorie/internal/tracker"
	"calorie/internal/view"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.TrackerEventMessage
	err  error
}

func (f *fakePublisher) PublishTrackerEvent(ctx context.Context, msg *amqp.TrackerEventMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	f.msgs = append(f.msgs, msg)
	return f.err
}

func newService(t *testing.T, publisher Publisher) *TrackerService {
	t.Helper()
	var opts []session.Option
	if publisher != nil {
		opts = append(opts, session.WithListeners(PublisherListeners(publisher)))
	}
	return NewTrackerService(session.NewManager(memory.New(), session.Config{}, opts...), nil)
}

func TestEventPublisherSkipsAnnouncements(t *testing.T) {
	pub := &fakePublisher{}
	p := NewEventPublisher("s1", pub)

	p.Notify(context.Background(), tracker.Event{Kind: tracker.EventMealShown})
	p.Notify(context.Background(), tracker.Event{Kind: tracker.EventRefreshed})
	p.Notify(context.Background(), tracker.Event{Kind: tracker.EventLimitChanged, Summary: core.Summary{Limit: 1500}})

	if len(pub.msgs) != 1 || pub.msgs[0].Kind != "limit_changed" || pub.msgs[0].Limit != 1500 {
		t.Fatalf("unexpected messages: %+v", pub.msgs)
	}
}

func TestEventPublisherIgnoresCancellationAndErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	p := NewEventPublisher("s1", pub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Notify(ctx, tracker.Event{Kind: tracker.EventReset})

	if len(pub.msgs) != 1 {
		t.Fatalf("expected the message to be attempted despite cancellation, got %d", len(pub.msgs))
	}
}

func TestPublisherListenersDisabled(t *testing.T) {
	if PublisherListeners(nil) != nil {
		t.Fatal("expected no factory without a publisher")
	}
}

func TestTrackerServicePublishesMutations(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newService(t, pub)

	meal, err := svc.AddMeal(ctx, "s1", "Eggs", 300, nil)
	if err != nil {
		t.Fatalf("AddMeal: %v", err)
	}
	if err := svc.RemoveMeal(ctx, "s1", meal.ID, nil); err != nil {
		t.Fatalf("RemoveMeal: %v", err)
	}
	if err := svc.Show(ctx, "s1", &view.Recorder{}); err != nil {
		t.Fatalf("Show: %v", err)
	}

	if len(pub.msgs) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(pub.msgs))
	}
	if pub.msgs[0].Kind != "meal_added" || pub.msgs[0].Session != "s1" || pub.msgs[0].Entry.ID != meal.ID {
		t.Fatalf("unexpected first message: %+v", pub.msgs[0])
	}
	if pub.msgs[1].Kind != "meal_removed" || pub.msgs[1].Total != 0 {
		t.Fatalf("unexpected second message: %+v", pub.msgs[1])
	}
}

func TestTrackerServiceRendersOnlyDuringCall(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	first := &view.Recorder{}
	if _, err := svc.AddWorkout(ctx, "s1", "Run", 400, first); err != nil {
		t.Fatalf("AddWorkout: %v", err)
	}
	if first.Total != -400 || len(first.Workouts) != 1 {
		t.Fatalf("unexpected render: %+v", first)
	}

	commands := len(first.Commands)
	if err := svc.SetLimit(ctx, "s1", 1200, &view.Recorder{}); err != nil {
		t.Fatalf("SetLimit: %v", err)
	}
	if len(first.Commands) != commands {
		t.Fatal("a display must not receive events from later calls")
	}
}

func TestTrackerServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	if _, err := svc.AddMeal(ctx, "s1", "   ", 100, nil); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := svc.AddWorkout(ctx, "s1", "Run", -5, nil); !errors.Is(err, core.ErrNegativeCalories) {
		t.Fatalf("expected ErrNegativeCalories, got %v", err)
	}
	if _, err := svc.Snapshot(ctx, "bad id"); !errors.Is(err, session.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestTrackerServiceFilterAndReset(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	for _, name := range []string{"Egg salad", "Toast", "Scrambled eggs"} {
		if _, err := svc.AddMeal(ctx, "s1", name, 100, nil); err != nil {
			t.Fatalf("AddMeal: %v", err)
		}
	}
	meals, err := svc.FilterMeals(ctx, "s1", "EGG")
	if err != nil || len(meals) != 2 {
		t.Fatalf("expected 2 egg meals, got %v (err=%v)", meals, err)
	}

	_ = svc.SetLimit(ctx, "s1", 1700, nil)
	if err := svc.Reset(ctx, "s1", nil); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	snap, _ := svc.Snapshot(ctx, "s1")
	if len(snap.Meals) != 0 || snap.Summary.Total != 0 || snap.Summary.Limit != 1700 {
		t.Fatalf("unexpected snapshot after reset: %+v", snap)
	}
}
