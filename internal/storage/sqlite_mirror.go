package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

// schemaDDL defines the mirror table for the SQLite backend.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS task_mirror (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    done INTEGER NOT NULL DEFAULT 0,
    mirrored_at TEXT NOT NULL
);
`

// SQLiteMirror implements Mirror with one row per task in a SQLite database.
//
// Uses WAL mode so the database can be inspected while the server is writing.
type SQLiteMirror struct {
	// DBPath is the absolute path to the SQLite database file.
	DBPath string

	db *sql.DB
}

// NewSQLiteMirror opens the database at dbPath and initializes the schema.
//
// Parent directories are created if they don't exist.
func NewSQLiteMirror(dbPath string) (*SQLiteMirror, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps pragmas and writes on one handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteMirror{
		DBPath: dbPath,
		db:     db,
	}, nil
}

// Write upserts the row for task.
func (m *SQLiteMirror) Write(ctx context.Context, task Task) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO task_mirror (id, title, description, done, mirrored_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     title = excluded.title,
		     description = excluded.description,
		     done = excluded.done,
		     mirrored_at = excluded.mirrored_at`,
		task.ID, task.Title, task.Description, task.Done, mirroredAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mirror row: %w", err)
	}
	return nil
}

// Remove deletes the row for id. Returns ErrNotFound if there was no row.
func (m *SQLiteMirror) Remove(ctx context.Context, id int) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM task_mirror WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mirror row: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mirror row %d: %w", id, ErrNotFound)
	}
	return nil
}

// Load returns all mirrored rows ordered by id.
//
// Used for inspection and tests only; the task store never reads from a mirror.
func (m *SQLiteMirror) Load(ctx context.Context) ([]Task, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, title, description, done FROM task_mirror ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mirror: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]Task, 0)
	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.Done); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// Close closes the database handle.
func (m *SQLiteMirror) Close() error {
	return m.db.Close()
}

// mirroredAt returns the current UTC time as ISO 8601 with millisecond precision.
func mirroredAt() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000") + "Z"
}
