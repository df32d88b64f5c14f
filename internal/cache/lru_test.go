package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewLRUCache[int](2, time.Hour, WithEvictionCallback(func(k string, _ int) {
		evicted = append(evicted, k)
	}))

	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("unexpected evictions: %v", evicted)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUSlidingExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute, WithClock[string](clock.now))

	c.Set("s", "tracker")
	clock.advance(50 * time.Second)
	if _, ok := c.Get("s"); !ok {
		t.Fatal("entry expired too early")
	}
	clock.advance(50 * time.Second)
	if _, ok := c.Get("s"); !ok {
		t.Fatal("read should have extended the expiry")
	}
	clock.advance(61 * time.Second)
	if _, ok := c.Get("s"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestCleanExpiredAndDelete(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	var evicted int
	c := NewLRUCache[int](10, time.Minute,
		WithClock[int](clock.now),
		WithEvictionCallback(func(string, int) { evicted++ }))

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Delete("c")
	clock.advance(2 * time.Minute)
	c.Set("d", 4)

	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("expected 2 expired, got %d", n)
	}
	if evicted != 2 {
		t.Fatalf("delete must not trigger the callback, got %d evictions", evicted)
	}
	if c.Size() != 1 {
		t.Fatalf("expected only d left, got size %d", c.Size())
	}
}

func TestManagerSweep(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](10, time.Second, WithClock[int](clock.now))
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(context.Background(), time.Hour)
	defer m.Stop()

	clock.advance(2 * time.Second)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("expected 1 swept entry, got %d", n)
	}
}
