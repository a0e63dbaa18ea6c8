package mcpserver

import (
	"errors"

	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with all task tools registered against c.
func NewServer(c TaskClient) (*server.MCPServer, error) {
	if c == nil {
		return nil, errors.New("task client is required")
	}
	h := NewHandlers(c)

	s := server.NewMCPServer(
		"todo-api",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(listTasksTool(), h.HandleListTasks)
	s.AddTool(getTaskTool(), h.HandleGetTask)
	s.AddTool(createTaskTool(), h.HandleCreateTask)
	s.AddTool(updateTaskTool(), h.HandleUpdateTask)
	s.AddTool(deleteTaskTool(), h.HandleDeleteTask)

	return s, nil
}
