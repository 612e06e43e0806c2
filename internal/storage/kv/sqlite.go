package kv

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tripti/internal/storage/kv/migrations"
	_ "modernc.org/sqlite"
)

var sqliteQueries = queries{
	get: `SELECT value FROM kv WHERE key = ?`,
	set: `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`,
	del:   `DELETE FROM kv WHERE key = ?`,
	clear: `DELETE FROM kv`,
	list:  `SELECT key, value FROM kv`,
}

func NewSQLiteRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries}
}

// OpenSQLite opens (or creates) the database at dsn and migrates it.
// A single connection is used so that ":memory:" behaves as one database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, migrations.SQLite, "sqlite3", "sqlite"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLiteRepository(db), nil
}
