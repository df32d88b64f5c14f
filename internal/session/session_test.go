package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"calorie/internal/core"
	"calorie/internal/store"
	"calorie/internal/store/memory"
	"calorie/internal/tracker"
)

type countingListener struct {
	n atomic.Int64
}

func (c *countingListener) Notify(context.Context, tracker.Event) {
	c.n.Add(1)
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{NewID(), true},
		{"abc_DEF-123", true},
		{"", false},
		{"a:b", false},
		{"../etc", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestGetRejectsInvalidID(t *testing.T) {
	m := NewManager(memory.New(), Config{})
	if _, err := m.Get(context.Background(), "bad:id"); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	m := NewManager(backend, Config{DefaultLimit: 1800})

	a, err := m.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get alice: %v", err)
	}
	b, _ := m.Get(ctx, "bob")

	err = a.Do(func(tr *tracker.Tracker) error {
		meal, _ := core.NewMeal("Eggs", 300)
		return tr.AddMeal(ctx, meal)
	})
	if err != nil {
		t.Fatalf("AddMeal: %v", err)
	}

	_ = b.Do(func(tr *tracker.Tracker) error {
		if tr.Total() != 0 || tr.Limit() != 1800 {
			t.Errorf("bob should see an empty tracker with the default limit, got total=%d limit=%d", tr.Total(), tr.Limit())
		}
		return nil
	})

	keys, _ := backend.Keys(ctx, "")
	if len(keys) != 2 || keys[0] != "alice:meals" || keys[1] != "alice:totalCalories" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestGetReturnsCachedSession(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memory.New(), Config{})
	first, _ := m.Get(ctx, "s1")
	second, _ := m.Get(ctx, "s1")
	if first != second {
		t.Fatal("expected the cached session")
	}
	if m.Active() != 1 {
		t.Fatalf("expected 1 active session, got %d", m.Active())
	}
}

func TestConcurrentFirstGetSharesHydration(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memory.New(), Config{})

	var wg sync.WaitGroup
	results := make([]*Session, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Get(ctx, "shared")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			results[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range results[1:] {
		if s != results[0] {
			t.Fatal("expected every caller to get the same session")
		}
	}
}

func TestEvictedSessionRehydrates(t *testing.T) {
	ctx := context.Background()
	listener := &countingListener{}
	m := NewManager(memory.New(), Config{CacheSize: 1, TTL: time.Hour},
		WithListeners(func(string) tracker.Listener { return listener }))

	s1, _ := m.Get(ctx, "one")
	_ = s1.Do(func(tr *tracker.Tracker) error { return tr.SetLimit(ctx, 1500) })
	if listener.n.Load() != 1 {
		t.Fatalf("expected one event, got %d", listener.n.Load())
	}

	_, _ = m.Get(ctx, "two")
	// "one" was evicted and its listener unsubscribed.
	_ = s1.Do(func(tr *tracker.Tracker) error { return tr.SetLimit(ctx, 1600) })
	if listener.n.Load() != 1 {
		t.Fatalf("evicted session should not publish, got %d events", listener.n.Load())
	}

	again, _ := m.Get(ctx, "one")
	if again == s1 {
		t.Fatal("expected a fresh session after eviction")
	}
	_ = again.Do(func(tr *tracker.Tracker) error {
		if tr.Limit() != 1600 {
			t.Errorf("expected limit rehydrated from the store, got %d", tr.Limit())
		}
		return nil
	})
}

func TestSessionsListsStoredIDs(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	m := NewManager(backend, Config{})

	for _, id := range []string{"bob", "alice", "bob"} {
		s, err := m.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get %s: %v", id, err)
		}
		_ = s.Do(func(tr *tracker.Tracker) error {
			meal, _ := core.NewMeal("Eggs", 300)
			return tr.AddMeal(ctx, meal)
		})
	}
	_, _ = m.Get(ctx, "idle")
	_ = backend.Set(ctx, "calorieLimit", []byte(`1800`))

	ids, err := m.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if strings.Join(ids, ",") != "alice,bob" {
		t.Fatalf("unexpected sessions: %v", ids)
	}
}

type plainBackend struct{ store.Backend }

func TestSessionsNeedsListingBackend(t *testing.T) {
	m := NewManager(plainBackend{memory.New()}, Config{})
	if _, err := m.Sessions(context.Background()); !errors.Is(err, ErrListNotSupported) {
		t.Fatalf("expected ErrListNotSupported, got %v", err)
	}
}

func TestSeedFileDefaultsApplyToSessions(t *testing.T) {
	ctx := context.Background()
	seed := filepath.Join(t.TempDir(), "seed.json")
	content := `{"calorieLimit": 1800, "totalCalories": 300, "meals": [{"id":"m1","name":"Eggs","calories":300}]}`
	if err := os.WriteFile(seed, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	backend := memory.NewFromFile(seed)
	m := NewManager(backend, Config{})

	s, err := m.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	_ = s.Do(func(tr *tracker.Tracker) error {
		if tr.Limit() != 1800 || tr.Total() != 300 || len(tr.Meals()) != 1 {
			t.Errorf("seed not applied: limit=%d total=%d meals=%d", tr.Limit(), tr.Total(), len(tr.Meals()))
		}
		return tr.Reset(ctx)
	})

	fresh := NewManager(backend, Config{})
	again, err := fresh.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get after reset: %v", err)
	}
	_ = again.Do(func(tr *tracker.Tracker) error {
		if tr.Limit() != 1800 || tr.Total() != 0 || len(tr.Meals()) != 0 {
			t.Errorf("reset session fell back to the seed: limit=%d total=%d meals=%d", tr.Limit(), tr.Total(), len(tr.Meals()))
		}
		return nil
	})
}
