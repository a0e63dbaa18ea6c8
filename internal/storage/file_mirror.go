package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/JamesPrial/todo-api/internal/pathutil"
)

// FileMirror implements Mirror with one plain-text file per task.
//
// Each task is rendered to <Dir>/T<id>.txt. Files are written atomically via a
// temporary file in the same directory and os.Rename, so a reader never sees a
// partially written task.
type FileMirror struct {
	// Dir is the directory holding the mirror files. It must already exist.
	Dir string
}

// NewFileMirror creates a FileMirror writing into dir.
func NewFileMirror(dir string) *FileMirror {
	return &FileMirror{
		Dir: dir,
	}
}

// FileName returns the mirror file name for a task id, e.g. "T3.txt".
func FileName(id int) string {
	return "T" + strconv.Itoa(id) + ".txt"
}

// RenderTask returns the four-line plain-text rendering stored in a mirror file.
func RenderTask(task Task) string {
	return fmt.Sprintf("id = %d\ntitle = %s\nDescription = %s\nDone = %t\n",
		task.ID, task.Title, task.Description, task.Done)
}

// Path returns the resolved mirror file path for id.
//
// Returns an error if the path would fall outside Dir.
func (m *FileMirror) Path(id int) (string, error) {
	return pathutil.ResolveSafePath(m.Dir, FileName(id))
}

// Write atomically replaces the mirror file for task.
//
// The directory is not created: a missing or unwritable Dir is reported as an
// error so the caller can surface it as a storage failure.
func (m *FileMirror) Write(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := m.Path(task.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve mirror path: %w", err)
	}

	tmpFile, err := os.CreateTemp(m.Dir, ".T*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.WriteString(RenderTask(task))
	closeErr := tmpFile.Close()

	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write mirror file: %w", writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close mirror file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename mirror file: %w", err)
	}

	return nil
}

// Remove deletes the mirror file for id.
//
// Returns the underlying error (including os.ErrNotExist) unchanged in the chain;
// TaskStore ignores it.
func (m *FileMirror) Remove(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := m.Path(id)
	if err != nil {
		return fmt.Errorf("failed to resolve mirror path: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove mirror file: %w", err)
	}
	return nil
}

// Close is a no-op for FileMirror.
func (m *FileMirror) Close() error {
	return nil
}
