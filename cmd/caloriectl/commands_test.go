package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"calorie/internal/core"
	"calorie/internal/log"
	"calorie/internal/services"
	"calorie/internal/session"
	"calorie/internal/store/memory"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	logger := log.New(log.Config{Level: slog.LevelError, Output: io.Discard})
	sessions := session.NewManager(memory.New(), session.Config{})
	return &app{svc: services.NewTrackerService(sessions, logger)}
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandsEditSession(t *testing.T) {
	a := newTestApp(t)

	out, err := run(t, a, "meal", "add", "Porridge", "350")
	if err != nil {
		t.Fatalf("meal add: %v", err)
	}
	if !strings.Contains(out, "Porridge") || !strings.Contains(out, "1650") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, err := run(t, a, "workout", "add", "Run", "200"); err != nil {
		t.Fatalf("workout add: %v", err)
	}
	if _, err := run(t, a, "limit", "1000"); err != nil {
		t.Fatalf("limit: %v", err)
	}

	out, err = run(t, a, "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Porridge", "Run", "1000", "850"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, a, "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	out, _ = run(t, a, "list", "meals")
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no meals after reset, got:\n%s", out)
	}
}

func TestListFilterAndRemove(t *testing.T) {
	a := newTestApp(t)
	run(t, a, "meal", "add", "Scrambled eggs", "300")
	run(t, a, "meal", "add", "Cake", "400")

	out, err := run(t, a, "list", "meals", "--filter", "EGG")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Scrambled eggs") || strings.Contains(out, "Cake") {
		t.Fatalf("unexpected filter output:\n%s", out)
	}

	if _, err := run(t, a, "meal", "rm", "does-not-exist"); err != nil {
		t.Fatalf("removing an unknown id should succeed: %v", err)
	}
}

func TestCommandArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative calories", []string{"meal", "add", "Eggs", "-3"}},
		{"non-numeric limit", []string{"limit", "lots"}},
		{"unknown list kind", []string{"list", "snacks"}},
		{"bad session", []string{"--session", "a b", "show"}},
		{"missing calories", []string{"workout", "add", "Run"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, newTestApp(t), tt.args...); err == nil {
				t.Fatalf("expected an error for %v", tt.args)
			}
		})
	}
}

func TestSessionsAreSeparate(t *testing.T) {
	a := newTestApp(t)
	run(t, a, "--session", "alice", "meal", "add", "Toast", "150")

	out, err := run(t, a, "--session", "bob", "list", "meals")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(out, "Toast") {
		t.Fatalf("session bob sees alice's meal:\n%s", out)
	}
}

func TestNegativeLimit(t *testing.T) {
	a := newTestApp(t)

	if _, err := run(t, a, "limit", "--", "-500"); err != nil {
		t.Fatalf("limit -- -500: %v", err)
	}
	snap, err := a.svc.Snapshot(context.Background(), defaultSession)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Summary.Limit != -500 {
		t.Fatalf("limit = %d, want -500", snap.Summary.Limit)
	}

	_, err = run(t, a, "limit", "-500")
	if err == nil || !strings.Contains(err.Error(), "limit -- -500") {
		t.Fatalf("expected a hint about --, got %v", err)
	}
}

func TestSessionsCommand(t *testing.T) {
	a := newTestApp(t)

	out, err := run(t, a, "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if !strings.Contains(out, "no stored sessions") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	run(t, a, "--session", "bob", "meal", "add", "Toast", "150")
	run(t, a, "--session", "alice", "limit", "1800")

	out, err = run(t, a, "--session", "alice", "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if out != "* alice\n  bob\n" {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

type fakeJournal struct {
	entries []core.JournalEntry
	session string
	limit   int
}

func (f *fakeJournal) RecentEntries(_ context.Context, session string, limit int) ([]core.JournalEntry, error) {
	f.session, f.limit = session, limit
	return f.entries, nil
}

func TestJournalCommand(t *testing.T) {
	a := newTestApp(t)
	journal := &fakeJournal{entries: []core.JournalEntry{
		{Event: "meal_added", Kind: core.KindMeal, Name: "Eggs", Calories: 300, Limit: 2000, Total: 300, CreatedAt: time.Now()},
	}}
	a.journal = journal

	out, err := run(t, a, "--session", "alice", "journal", "-n", "5")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if journal.session != "alice" || journal.limit != 5 {
		t.Fatalf("journal queried with session=%q limit=%d", journal.session, journal.limit)
	}
	if !strings.Contains(out, "meal_added Eggs (300 kcal)") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	journal.entries = nil
	out, _ = run(t, a, "journal")
	if !strings.Contains(out, "no journal entries") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
