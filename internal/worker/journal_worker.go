// Package worker turns consumed tracker events into journal rows.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"calorie/internal/amqp"
	"calorie/internal/sheets"
)

// Journal is the primary, durable journal store.
type Journal interface {
	sheets.JournalWriter
	JournalStats(ctx context.Context) (map[string]int64, error)
}

// JournalWorker records every event in the journal and, when an exporter is
// configured, mirrors it there too.
type JournalWorker struct {
	journal  Journal
	exporter sheets.JournalWriter
}

// NewJournalWorker builds a worker. exporter may be nil.
func NewJournalWorker(journal Journal, exporter sheets.JournalWriter) *JournalWorker {
	return &JournalWorker{journal: journal, exporter: exporter}
}

// HandleEvent journals one message. An error means the message should be
// retried; export failures are logged only, since the journal row is
// already written.
func (w *JournalWorker) HandleEvent(ctx context.Context, msg *amqp.TrackerEventMessage) error {
	entry := msg.JournalEntry()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	ref, err := w.journal.AppendEntry(ctx, entry)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}

	slog.InfoContext(ctx, "Tracker event journaled",
		"session_id", entry.Session,
		"event", entry.Event,
		"row_ref", ref,
		"total_calories", entry.Total)

	if w.exporter == nil {
		return nil
	}
	exportRef, err := w.exporter.AppendEntry(ctx, entry)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to export journal entry",
			"session_id", entry.Session,
			"event", entry.Event,
			"error", err)
		return nil
	}
	slog.DebugContext(ctx, "Journal entry exported", "row_ref", exportRef)
	return nil
}

// ReportStats logs the number of journaled events per kind.
func (w *JournalWorker) ReportStats(ctx context.Context) error {
	stats, err := w.journal.JournalStats(ctx)
	if err != nil {
		return fmt.Errorf("journal stats: %w", err)
	}
	kinds := make([]string, 0, len(stats))
	var total int64
	for k, n := range stats {
		kinds = append(kinds, k)
		total += n
	}
	sort.Strings(kinds)

	args := []any{"total", total}
	for _, k := range kinds {
		args = append(args, k, stats[k])
	}
	slog.InfoContext(ctx, "Journal statistics", args...)
	return nil
}

// RunStats reports statistics every interval until ctx is done.
func (w *JournalWorker) RunStats(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.ReportStats(ctx); err != nil {
				slog.WarnContext(ctx, "Failed to report journal statistics", "error", err)
			}
		}
	}
}
