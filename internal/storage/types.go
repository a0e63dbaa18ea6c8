// Package storage provides the task model, the in-memory task store and the
// mirror backends that write a side copy of each task outside the process.
//
// The in-memory TaskStore is the only source of truth. Mirrors are write-only:
// nothing is ever loaded back from them, so a mirror may drift from the store
// (for example, updates are not mirrored).
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// ErrStorage is returned when a mirror write fails while creating a task.
// The store is left unchanged when this error is returned.
var ErrStorage = errors.New("mirror storage failure")

// Task is a single todo record.
//
// The JSON tags match the wire format of the HTTP API.
type Task struct {
	// ID is assigned by the store and never changes.
	ID int `json:"id"`

	// Title is required on create.
	Title string `json:"title"`

	// Description defaults to the empty string.
	Description string `json:"description"`

	// Done defaults to false and may be toggled freely.
	Done bool `json:"done"`
}

// TaskPatch describes a partial update. A nil field keeps the stored value.
type TaskPatch struct {
	Title       *string
	Description *string
	Done        *bool
}

// Mirror defines the contract for the side copy kept for every created task.
//
// Implementations must be safe to call from a single goroutine at a time;
// TaskStore serializes all calls under its own lock.
type Mirror interface {
	// Write stores the rendering of task, replacing any previous copy.
	Write(ctx context.Context, task Task) error

	// Remove deletes the copy for id. Callers treat failures as best-effort,
	// so implementations may return an error when the copy does not exist.
	Remove(ctx context.Context, id int) error

	// Close releases any resources held by the mirror.
	Close() error
}

// SeedTasks returns the two tasks every fresh store starts with.
func SeedTasks() []Task {
	return []Task{
		{
			ID:          1,
			Title:       "Buy groceries",
			Description: "Milk, Cheese, Pizza Ätna, Fruit, Tylenol",
			Done:        false,
		},
		{
			ID:          2,
			Title:       "Find cute French names",
			Description: "Which is better - Charlotte or Geneviève?",
			Done:        false,
		},
	}
}
