package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JamesPrial/todo-api/internal/pathutil"
)

// Mirror backend names accepted by NewMirror.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultSQLiteName is the database file created under the mirror directory
// when no explicit SQLite path is configured.
const DefaultSQLiteName = "tasks.db"

// MirrorOptions selects and configures a mirror backend.
type MirrorOptions struct {
	// Backend is "file" (default), "sqlite" or "postgres". Case-insensitive.
	Backend string

	// Dir is the mirror base directory. Required for every backend: the file
	// backend writes into it and the SQLite database must live inside it.
	Dir string

	// SQLitePath overrides <Dir>/tasks.db. Relative paths are resolved against Dir.
	SQLitePath string

	// PostgresURL is the connection string for the postgres backend.
	PostgresURL string
}

// NewMirror returns the mirror backend described by opts.
//
// Returns an error if the backend is unknown, Dir is not an existing
// directory, a custom SQLite path escapes Dir, or the database cannot be opened.
func NewMirror(ctx context.Context, opts MirrorOptions) (Mirror, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = BackendFile
	}

	dir, err := pathutil.ValidateDir(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("invalid mirror directory: %w", err)
	}

	switch backend {
	case BackendFile:
		return NewFileMirror(dir), nil

	case BackendSQLite:
		path, err := sqlitePath(dir, opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to determine SQLite database path: %w", err)
		}
		return NewSQLiteMirror(path)

	case BackendPostgres:
		connString := strings.TrimSpace(opts.PostgresURL)
		if connString == "" {
			return nil, fmt.Errorf("postgres mirror requires a connection string")
		}
		return NewPostgresMirror(ctx, connString)

	default:
		return nil, fmt.Errorf("unknown mirror backend: %q. Expected 'file', 'sqlite' or 'postgres'", backend)
	}
}

// sqlitePath returns the SQLite database path, defaulting to <dir>/tasks.db.
//
// A custom path is validated to stay within dir.
func sqlitePath(dir, customPath string) (string, error) {
	customPath = strings.TrimSpace(customPath)
	if customPath == "" {
		return filepath.Join(dir, DefaultSQLiteName), nil
	}

	safePath, err := pathutil.ResolveSafePath(dir, customPath)
	if err != nil {
		return "", fmt.Errorf("invalid SQLite path: %w", err)
	}
	return safePath, nil
}
