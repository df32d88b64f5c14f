package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"calorie/internal/core"
	"calorie/internal/sheets"
	"calorie/internal/store"

	_ "modernc.org/sqlite"
)

var (
	_ store.Backend        = (*SQLiteRepository)(nil)
	_ store.Lister         = (*SQLiteRepository)(nil)
	_ sheets.JournalWriter = (*SQLiteRepository)(nil)
	_ sheets.JournalReader = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	path    string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		path:    dbPath,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SchemaVersion reports the applied migration version and whether a
// migration was left half-applied. It opens a short-lived connection since
// migrate closes the one it is given.
func (r *SQLiteRepository) SchemaVersion(ctx context.Context) (uint, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	return schemaVersion(r.path)
}

// Get implements store.Backend.
func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.queries.GetValue(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get value %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements store.Backend.
func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.queries.UpsertValue(ctx, UpsertValueParams{Key: key, Value: value}); err != nil {
		return fmt.Errorf("set value %s: %w", key, err)
	}
	return nil
}

// Delete implements store.Backend. All keys go in one transaction.
func (r *SQLiteRepository) Delete(ctx context.Context, keys ...string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	for _, key := range keys {
		if err := q.DeleteValue(ctx, key); err != nil {
			return fmt.Errorf("delete value %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// Keys lists stored keys starting with prefix.
func (r *SQLiteRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := r.queries.ListKeys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}

// AppendEntry implements sheets.JournalWriter.
func (r *SQLiteRepository) AppendEntry(ctx context.Context, e core.JournalEntry) (string, error) {
	id, err := r.queries.CreateJournalEntry(ctx, CreateJournalEntryParams{
		Session:      e.Session,
		Event:        e.Event,
		Kind:         string(e.Kind),
		EntryID:      e.EntryID,
		Name:         e.Name,
		Calories:     e.Calories,
		CalorieLimit: e.Limit,
		Total:        e.Total,
		CreatedAt:    e.CreatedAt.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("create journal entry: %w", err)
	}

	slog.DebugContext(ctx, "Journal entry saved to SQLite",
		"id", id,
		"session", e.Session,
		"event", e.Event,
		"total", e.Total)

	return strconv.FormatInt(id, 10), nil
}

// RecentEntries implements sheets.JournalReader.
func (r *SQLiteRepository) RecentEntries(ctx context.Context, session string, limit int) ([]core.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.queries.ListJournalBySession(ctx, ListJournalBySessionParams{
		Session: session,
		Limit:   int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list journal for %s: %w", session, err)
	}

	entries := make([]core.JournalEntry, len(rows))
	for i, row := range rows {
		entries[i] = core.JournalEntry{
			ID:        row.ID,
			Session:   row.Session,
			Event:     row.Event,
			Kind:      core.EntryKind(row.Kind),
			EntryID:   row.EntryID,
			Name:      row.Name,
			Calories:  row.Calories,
			Limit:     row.CalorieLimit,
			Total:     row.Total,
			CreatedAt: row.CreatedAt.Time,
		}
	}
	return entries, nil
}

// JournalStats returns the number of journal entries per event kind.
func (r *SQLiteRepository) JournalStats(ctx context.Context) (map[string]int64, error) {
	rows, err := r.queries.CountJournalByEvent(ctx)
	if err != nil {
		return nil, fmt.Errorf("count journal entries: %w", err)
	}
	stats := make(map[string]int64, len(rows))
	for _, row := range rows {
		stats[row.Event] = row.Count
	}
	return stats, nil
}
