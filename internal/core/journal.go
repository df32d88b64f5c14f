package core

import "time"

// JournalEntry is one recorded tracker event, as written by the worker.
type JournalEntry struct {
	ID        int64
	Session   string
	Event     string
	Kind      EntryKind // empty for limit and reset events
	EntryID   string
	Name      string
	Calories  int64
	Limit     int64
	Total     int64
	CreatedAt time.Time
}
