package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// TaskStore holds tasks in memory, in insertion order, for the process lifetime.
//
// Every create is mirrored through the configured Mirror and every delete
// removes the mirrored copy on a best-effort basis. All methods are safe for
// concurrent use; id assignment and the mirror write happen under one lock.
type TaskStore struct {
	mu     sync.Mutex
	tasks  []Task
	nextID int
	mirror Mirror
	logger *slog.Logger
}

// NewTaskStore creates an empty TaskStore backed by mirror.
//
// A nil logger discards log output.
func NewTaskStore(mirror Mirror, logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TaskStore{
		tasks:  make([]Task, 0),
		nextID: 1,
		mirror: mirror,
		logger: logger,
	}
}

// Seed appends tasks with their given ids and mirrors each one.
//
// Tasks whose id is not positive or already present are rejected with an error
// before anything is appended. Mirror failures are logged and do not stop seeding.
// The id counter moves past the largest seeded id.
func (s *TaskStore) Seed(ctx context.Context, tasks ...Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]bool, len(s.tasks)+len(tasks))
	for _, t := range s.tasks {
		seen[t.ID] = true
	}
	for _, t := range tasks {
		if t.ID <= 0 {
			return fmt.Errorf("seed task %q has invalid id %d", t.Title, t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("seed task id %d already exists", t.ID)
		}
		seen[t.ID] = true
	}

	for _, t := range tasks {
		s.tasks = append(s.tasks, t)
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
		if err := s.mirror.Write(ctx, t); err != nil {
			s.logger.Warn("mirror seed task", "task_id", t.ID, "error", err)
		}
	}

	return nil
}

// List returns a copy of all tasks in insertion order.
func (s *TaskStore) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Task, len(s.tasks))
	copy(result, s.tasks)
	return result
}

// Get returns the task with id, or ErrNotFound.
func (s *TaskStore) Get(id int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	return s.tasks[i], nil
}

// Create assigns the next id, mirrors the new task and appends it.
//
// The task is not done and has the given title and description. If the mirror
// write fails the store is unchanged, the id is not consumed and the returned
// error wraps ErrStorage.
func (s *TaskStore) Create(ctx context.Context, title, description string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := Task{
		ID:          s.nextID,
		Title:       title,
		Description: description,
		Done:        false,
	}

	if err := s.mirror.Write(ctx, task); err != nil {
		s.logger.Error("mirror task", "task_id", task.ID, "error", err)
		return Task{}, fmt.Errorf("%w: task %d: %v", ErrStorage, task.ID, err)
	}

	s.tasks = append(s.tasks, task)
	s.nextID++
	return task, nil
}

// Update merges patch into the task with id and returns the result.
//
// The mirror is not rewritten: mirrored copies reflect the task as created.
func (s *TaskStore) Update(id int, patch TaskPatch) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}

	task := &s.tasks[i]
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Done != nil {
		task.Done = *patch.Done
	}
	return *task, nil
}

// Delete removes the task with id and then removes its mirrored copy.
//
// Mirror removal errors, including a copy that no longer exists, are ignored.
func (s *TaskStore) Delete(ctx context.Context, id int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}

	task := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)

	if err := s.mirror.Remove(ctx, id); err != nil {
		s.logger.Debug("ignoring mirror removal failure", "task_id", id, "error", err)
	}

	return task, nil
}

// Len returns the number of tasks in the store.
func (s *TaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *TaskStore) indexOf(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
