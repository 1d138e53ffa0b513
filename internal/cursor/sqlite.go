package cursor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const createCursorTable = `CREATE TABLE IF NOT EXISTS cursors (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL
)`

// Cursor kept in a row of an SQLite database file
type SqliteStore struct {
	db   *sql.DB
	name string
}

func OpenSqliteStore(ctx context.Context, path string, name string) (*SqliteStore, error) {

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open database %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, createCursorTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create cursor table: %w", err)
	}
	if name == "" {
		name = "clublog"
	}
	return &SqliteStore{db: db, name: name}, nil
}

func (store *SqliteStore) Load(ctx context.Context) (int64, error) {
	var value int64
	err := store.db.QueryRowContext(ctx, `SELECT value FROM cursors WHERE name = ?`, store.name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not load cursor %s: %w", store.name, err)
	}
	return value, nil
}

func (store *SqliteStore) Save(ctx context.Context, value int64) error {
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO cursors (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		store.name, value)
	if err != nil {
		return fmt.Errorf("could not save cursor %s: %w", store.name, err)
	}
	return nil
}

func (store *SqliteStore) Close() error {
	return store.db.Close()
}
