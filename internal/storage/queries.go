package storage

import (
	"context"
	"time"
)

const getValue = `-- name: GetValue :one
SELECT value FROM kv WHERE key = ?
`

func (q *Queries) GetValue(ctx context.Context, key string) ([]byte, error) {
	row := q.db.QueryRowContext(ctx, getValue, key)
	var value []byte
	err := row.Scan(&value)
	return value, err
}

const upsertValue = `-- name: UpsertValue :exec
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`

type UpsertValueParams struct {
	Key   string
	Value []byte
}

func (q *Queries) UpsertValue(ctx context.Context, arg UpsertValueParams) error {
	_, err := q.db.ExecContext(ctx, upsertValue, arg.Key, arg.Value)
	return err
}

const deleteValue = `-- name: DeleteValue :exec
DELETE FROM kv WHERE key = ?
`

func (q *Queries) DeleteValue(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteValue, key)
	return err
}

const listKeys = `-- name: ListKeys :many
SELECT key FROM kv WHERE substr(key, 1, length(?1)) = ?1 ORDER BY key
`

func (q *Queries) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listKeys, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		items = append(items, key)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createJournalEntry = `-- name: CreateJournalEntry :one
INSERT INTO journal (session, event, kind, entry_id, name, calories, calorie_limit, total, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateJournalEntryParams struct {
	Session      string
	Event        string
	Kind         string
	EntryID      string
	Name         string
	Calories     int64
	CalorieLimit int64
	Total        int64
	CreatedAt    time.Time
}

func (q *Queries) CreateJournalEntry(ctx context.Context, arg CreateJournalEntryParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createJournalEntry,
		arg.Session,
		arg.Event,
		arg.Kind,
		arg.EntryID,
		arg.Name,
		arg.Calories,
		arg.CalorieLimit,
		arg.Total,
		arg.CreatedAt,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listJournalBySession = `-- name: ListJournalBySession :many
SELECT id, session, event, kind, entry_id, name, calories, calorie_limit, total, created_at
FROM journal
WHERE session = ?
ORDER BY id DESC
LIMIT ?
`

type ListJournalBySessionParams struct {
	Session string
	Limit   int64
}

func (q *Queries) ListJournalBySession(ctx context.Context, arg ListJournalBySessionParams) ([]Journal, error) {
	rows, err := q.db.QueryContext(ctx, listJournalBySession, arg.Session, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Journal
	for rows.Next() {
		var i Journal
		if err := rows.Scan(
			&i.ID,
			&i.Session,
			&i.Event,
			&i.Kind,
			&i.EntryID,
			&i.Name,
			&i.Calories,
			&i.CalorieLimit,
			&i.Total,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countJournalByEvent = `-- name: CountJournalByEvent :many
SELECT event, COUNT(*) AS count FROM journal GROUP BY event ORDER BY event
`

type CountJournalByEventRow struct {
	Event string
	Count int64
}

func (q *Queries) CountJournalByEvent(ctx context.Context) ([]CountJournalByEventRow, error) {
	rows, err := q.db.QueryContext(ctx, countJournalByEvent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountJournalByEventRow
	for rows.Next() {
		var i CountJournalByEventRow
		if err := rows.Scan(&i.Event, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
