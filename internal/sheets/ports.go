package sheets

import (
	"context"

	"calorie/internal/core"
)

// Ports for journal adapters.
type (
	JournalWriter interface {
		AppendEntry(ctx context.Context, e core.JournalEntry) (rowRef string, err error)
	}

	// JournalReader returns the most recent entries of a session, newest first.
	JournalReader interface {
		RecentEntries(ctx context.Context, session string, limit int) ([]core.JournalEntry, error)
	}
)
