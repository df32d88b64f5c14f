package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"calorie/internal/core"
)

// entryRow lays out a journal entry as
// Timestamp, Session, Event, Kind, Entry, Name, Calories, Limit, Total.
func entryRow(e core.JournalEntry) []any {
	return []any{
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.Session,
		e.Event,
		string(e.Kind),
		e.EntryID,
		e.Name,
		e.Calories,
		e.Limit,
		e.Total,
	}
}

// parseEntryRow is the inverse of entryRow. Header rows and rows without a
// valid timestamp are rejected.
func parseEntryRow(row []any) (core.JournalEntry, bool) {
	cells := toStrings(row)
	at, err := time.Parse(time.RFC3339, safeGet(cells, 0))
	if err != nil {
		return core.JournalEntry{}, false
	}
	e := core.JournalEntry{
		Session:   safeGet(cells, 1),
		Event:     safeGet(cells, 2),
		Kind:      core.EntryKind(safeGet(cells, 3)),
		EntryID:   safeGet(cells, 4),
		Name:      safeGet(cells, 5),
		CreatedAt: at,
	}
	if e.Session == "" || e.Event == "" {
		return core.JournalEntry{}, false
	}
	e.Calories = parseNumber(safeGet(cells, 6))
	e.Limit = parseNumber(safeGet(cells, 7))
	e.Total = parseNumber(safeGet(cells, 8))
	return e, true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseNumber reads a whole number of calories. Sheets may hand numbers back
// formatted as floats ("1200.0") or with a decimal comma.
func parseNumber(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if f < 0 {
		return int64(f - 0.5)
	}
	return int64(f + 0.5)
}

func parseYear(s string) (int, bool) {
	y, err := strconv.Atoi(s)
	return y, err == nil
}
