package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesPrial/todo-api/internal/storage"
)

// Error messages rendered under the "error" key.
const (
	msgNotFound         = "Not found"
	msgBadRequest       = "Bad request"
	msgUnauthorized     = "Unauthorized Access"
	msgMethodNotAllowed = "Method not allowed"
	msgStorageFailure   = "Storage failure"
	msgInternal         = "Internal server error"
)

// respond writes body as JSON with status.
func respond(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// abortWithError writes {"error": message} and stops the handler chain.
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// fail translates a store error into its HTTP response.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		abortWithError(c, http.StatusNotFound, msgNotFound)
	case errors.Is(err, storage.ErrStorage):
		s.logger.Error("storage failure", "request_id", requestIDFrom(c), "error", err)
		abortWithError(c, http.StatusInternalServerError, msgStorageFailure)
	default:
		s.logger.Error("unexpected error", "request_id", requestIDFrom(c), "error", err)
		abortWithError(c, http.StatusInternalServerError, msgInternal)
	}
}

// handleNotFound renders unmatched routes.
func (s *Server) handleNotFound(c *gin.Context) {
	abortWithError(c, http.StatusNotFound, msgNotFound)
}

// handleMethodNotAllowed renders known paths requested with the wrong method.
func (s *Server) handleMethodNotAllowed(c *gin.Context) {
	abortWithError(c, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// recoverPanic renders a panic in any handler as a JSON 500.
func (s *Server) recoverPanic(c *gin.Context, recovered any) {
	s.logger.Error("panic while handling request",
		"request_id", requestIDFrom(c),
		"path", c.Request.URL.Path,
		"panic", recovered,
	)
	abortWithError(c, http.StatusInternalServerError, msgInternal)
}
