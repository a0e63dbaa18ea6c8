package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// taskID parses the :id path parameter. Only plain decimal digits are accepted.
func taskID(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	if raw == "" || len(raw) > 18 {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *Server) handleListTasks(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"tasks": s.store.List()})
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		s.handleNotFound(c)
		return
	}

	task, err := s.store.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"task": task})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	obj, err := readObject(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	req, err := parseCreate(obj)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	task, err := s.store.Create(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info("task created", "request_id", requestIDFrom(c), "task_id", task.ID)
	respond(c, http.StatusCreated, gin.H{"task": task})
}

// handleUpdateTask checks, in order: the task exists, a body is present,
// and "done" is a boolean when supplied.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		s.handleNotFound(c)
		return
	}

	if _, err := s.store.Get(id); err != nil {
		s.fail(c, err)
		return
	}

	obj, err := readObject(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	patch, err := parseUpdate(obj)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, msgBadRequest)
		return
	}

	task, err := s.store.Update(id, patch)
	if err != nil {
		s.fail(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"task":    task,
		"message": fmt.Sprintf("Successfully updated task %d", id),
	})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		s.handleNotFound(c)
		return
	}

	if _, err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info("task deleted", "request_id", requestIDFrom(c), "task_id", id)
	respond(c, http.StatusOK, gin.H{
		"result":  true,
		"message": fmt.Sprintf("Successfully deleted task %d", id),
	})
}
