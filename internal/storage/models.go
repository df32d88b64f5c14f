package storage

import (
	"database/sql"
)

type Kv struct {
	Key       string
	Value     []byte
	UpdatedAt sql.NullTime
}

type Journal struct {
	ID           int64
	Session      string
	Event        string
	Kind         string
	EntryID      string
	Name         string
	Calories     int64
	CalorieLimit int64
	Total        int64
	CreatedAt    sql.NullTime
}
