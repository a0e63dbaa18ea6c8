// Package api serves the task HTTP API.
//
// Every /todo/api/v1.0 route sits behind HTTP Basic authentication for a
// single identity. Responses, including every error, are JSON objects.
package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesPrial/todo-api/internal/storage"
)

// BasePath is the prefix of every task route.
const BasePath = "/todo/api/v1.0"

// Store is the task storage used by the handlers. *storage.TaskStore implements it.
type Store interface {
	List() []storage.Task
	Get(id int) (storage.Task, error)
	Create(ctx context.Context, title, description string) (storage.Task, error)
	Update(id int, patch storage.TaskPatch) (storage.Task, error)
	Delete(ctx context.Context, id int) (storage.Task, error)
}

// Options configures a Server.
type Options struct {
	// Username and Password form the only accepted identity.
	Username string
	Password string

	// Logger receives request and error logs. Nil discards them.
	Logger *slog.Logger
}

// Server is the task API HTTP handler.
type Server struct {
	store  Store
	creds  credentials
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates a Server over store with all routes registered.
func NewServer(store Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	s := &Server{
		store:  store,
		creds:  credentials{username: opts.Username, password: opts.Password},
		logger: logger,
		router: router,
	}

	router.Use(s.requestID, s.logRequests, gin.CustomRecoveryWithWriter(io.Discard, s.recoverPanic))

	// Error translator
	router.NoRoute(s.handleNotFound)
	router.NoMethod(s.handleMethodNotAllowed)

	// API routes
	api := router.Group(BasePath, s.requireAuth)
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
	}

	return s
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP makes Server usable directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
