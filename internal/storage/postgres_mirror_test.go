package storage_test

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/JamesPrial/todo-api/internal/storage"
)

// dockerAvailable checks whether the Docker daemon is reachable.
// testcontainers-go panics (rather than returning an error) when Docker
// is not installed, so we probe for it up-front.
func dockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// startPostgres runs a PostgreSQL 16 container and returns its connection
// string. The test is skipped when Docker is unavailable or in short mode.
func startPostgres(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping container tests in short mode")
	}
	if !dockerAvailable() {
		t.Skip("Docker not available, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("failed to start PostgreSQL container: %v", err)
	}

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	return connStr
}

// newTestPostgresMirror returns a PostgresMirror against a fresh container.
func newTestPostgresMirror(t *testing.T) *storage.PostgresMirror {
	t.Helper()

	connStr := startPostgres(t)
	m, err := storage.NewPostgresMirror(context.Background(), connStr)
	if err != nil {
		t.Fatalf("NewPostgresMirror() error: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// ---------------------------------------------------------------------------
// NewPostgresMirror
// ---------------------------------------------------------------------------

func Test_NewPostgresMirror_InvalidConnString(t *testing.T) {
	t.Parallel()

	_, err := storage.NewPostgresMirror(context.Background(), "not a connection string ::")
	if err == nil {
		t.Fatal("NewPostgresMirror() with a malformed connection string returned nil error")
	}
}

func Test_NewPostgresMirror_SchemaIsIdempotent(t *testing.T) {
	connStr := startPostgres(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		m, err := storage.NewPostgresMirror(ctx, connStr)
		if err != nil {
			t.Fatalf("NewPostgresMirror() call %d error: %v", i, err)
		}
		_ = m.Close()
	}
}

// ---------------------------------------------------------------------------
// Write / Remove / Load
// ---------------------------------------------------------------------------

func Test_PostgresMirror_WriteRemoveLoad(t *testing.T) {
	m := newTestPostgresMirror(t)
	ctx := context.Background()

	for _, task := range []storage.Task{
		{ID: 1, Title: "Buy groceries", Description: "Milk, Cheese, Pizza Ätna"},
		{ID: 2, Title: "second"},
		{ID: 2, Title: "second v2", Done: true},
	} {
		if err := m.Write(ctx, task); err != nil {
			t.Fatalf("Write(%d) error: %v", task.ID, err)
		}
	}

	rows, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := []storage.Task{
		{ID: 1, Title: "Buy groceries", Description: "Milk, Cheese, Pizza Ätna"},
		{ID: 2, Title: "second v2", Done: true},
	}
	if len(rows) != len(want) {
		t.Fatalf("Load() = %+v, want %+v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}

	if err := m.Remove(ctx, 1); err != nil {
		t.Fatalf("Remove(1) error: %v", err)
	}
	if err := m.Remove(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Remove(1) error = %v, want ErrNotFound", err)
	}
}

func Test_PostgresMirror_WithTaskStore(t *testing.T) {
	m := newTestPostgresMirror(t)
	store := storage.NewTaskStore(m, nil)
	ctx := context.Background()

	if err := store.Seed(ctx, storage.SeedTasks()...); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	task, err := store.Create(ctx, "X", "")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if task.ID != 3 {
		t.Errorf("Create() id = %d, want 3", task.ID)
	}

	rows, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("mirror has %d rows, want 3", len(rows))
	}
}
