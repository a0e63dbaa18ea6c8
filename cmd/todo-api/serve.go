package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/JamesPrial/todo-api/internal/api"
	"github.com/JamesPrial/todo-api/internal/config"
	"github.com/JamesPrial/todo-api/internal/logs"
	"github.com/JamesPrial/todo-api/internal/storage"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the task API",
		Long: `Start the task API.

Examples:
  TASK_PATH=/var/lib/tasks todo-api serve
  todo-api serve --task-path ./tasks --addr 127.0.0.1:5000
  todo-api serve --config todo.yaml`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	cmd.Flags().String("task-path", "", "mirror directory (overrides TASK_PATH)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := logs.New(logs.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}

	return a.Serve(ctx, ln)
}

// loadConfig reads the config and applies flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("task-path") {
		cfg.Mirror.Dir, _ = cmd.Flags().GetString("task-path")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// app is a fully wired API: mirror, seeded store and HTTP server.
type app struct {
	logger *slog.Logger
	mirror storage.Mirror
	store  *storage.TaskStore
	server *http.Server
}

// newApp opens the mirror, seeds the store and builds the HTTP server.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	mirror, err := storage.NewMirror(ctx, cfg.MirrorOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}

	store := storage.NewTaskStore(mirror, logger)
	if err := store.Seed(ctx, storage.SeedTasks()...); err != nil {
		_ = mirror.Close()
		return nil, fmt.Errorf("failed to seed tasks: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewServer(store, api.Options{
		Username: cfg.Auth.Username,
		Password: cfg.Auth.Password,
		Logger:   logger,
	})

	return &app{
		logger: logger,
		mirror: mirror,
		store:  store,
		server: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

// Serve accepts connections on ln until ctx is done, then shuts down.
func (a *app) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- a.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Close releases the mirror.
func (a *app) Close() {
	if err := a.mirror.Close(); err != nil {
		a.logger.Warn("failed to close mirror", "error", err)
	}
}
