package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JamesPrial/todo-api/internal/client"
	"github.com/JamesPrial/todo-api/internal/storage"
)

// TaskClient is the subset of the API client the tools need.
type TaskClient interface {
	List(ctx context.Context) ([]storage.Task, error)
	Get(ctx context.Context, id int) (storage.Task, error)
	Create(ctx context.Context, title, description string) (storage.Task, error)
	Update(ctx context.Context, id int, req client.UpdateRequest) (storage.Task, error)
	Delete(ctx context.Context, id int) error
}

// Handlers implements the task tools on top of a TaskClient.
type Handlers struct {
	client TaskClient
}

// NewHandlers returns tool handlers backed by c.
func NewHandlers(c TaskClient) *Handlers {
	return &Handlers{client: c}
}

// HandleListTasks returns every task as JSON.
func (h *Handlers) HandleListTasks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := h.client.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks: %v", err)), nil
	}
	return jsonResult(map[string]any{"tasks": tasks, "count": len(tasks)})
}

// HandleGetTask returns one task.
// Parameters:
//   - id (number, required): task id
func (h *Handlers) HandleGetTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	task, err := h.client.Get(ctx, id)
	if err != nil {
		return toolError("get", id, err), nil
	}
	return jsonResult(task)
}

// HandleCreateTask creates a task.
// Parameters:
//   - title (string, required)
//   - description (string, optional)
func (h *Handlers) HandleCreateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("Missing required parameters"), nil
	}

	title, ok := args["title"].(string)
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: title"), nil
	}
	description, _ := args["description"].(string)

	task, err := h.client.Create(ctx, title, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create task: %v", err)), nil
	}
	return jsonResult(task)
}

// HandleUpdateTask applies a partial update.
// Parameters:
//   - id (number, required)
//   - title, description (string, optional)
//   - done (boolean, optional)
//
// At least one of title, description or done must be given.
func (h *Handlers) HandleUpdateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, errResult := requireID(args)
	if errResult != nil {
		return errResult, nil
	}

	var req client.UpdateRequest
	if v, present := args["title"]; present {
		s, ok := v.(string)
		if !ok {
			return mcp.NewToolResultError("Invalid parameter: title must be a string"), nil
		}
		req.Title = &s
	}
	if v, present := args["description"]; present {
		s, ok := v.(string)
		if !ok {
			return mcp.NewToolResultError("Invalid parameter: description must be a string"), nil
		}
		req.Description = &s
	}
	if v, present := args["done"]; present {
		b, ok := v.(bool)
		if !ok {
			return mcp.NewToolResultError("Invalid parameter: done must be a boolean"), nil
		}
		req.Done = &b
	}
	if req.Title == nil && req.Description == nil && req.Done == nil {
		return mcp.NewToolResultError("Nothing to update: give title, description or done"), nil
	}

	task, err := h.client.Update(ctx, id, req)
	if err != nil {
		return toolError("update", id, err), nil
	}
	return jsonResult(task)
}

// HandleDeleteTask deletes a task.
// Parameters:
//   - id (number, required)
func (h *Handlers) HandleDeleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := requireID(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	if err := h.client.Delete(ctx, id); err != nil {
		return toolError("delete", id, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted task %d", id)), nil
}

// requireID extracts a positive integral "id" argument.
func requireID(args map[string]any) (int, *mcp.CallToolResult) {
	if args == nil {
		return 0, mcp.NewToolResultError("Missing required parameter: id")
	}
	raw, ok := args["id"]
	if !ok {
		return 0, mcp.NewToolResultError("Missing required parameter: id")
	}

	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, mcp.NewToolResultError("Invalid parameter: id must be a number")
	}
	if f < 1 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, mcp.NewToolResultError(fmt.Sprintf("Invalid task id: %v", raw))
	}
	return int(f), nil
}

func toolError(op string, id int, err error) *mcp.CallToolResult {
	if client.IsNotFound(err) {
		return mcp.NewToolResultError(fmt.Sprintf("Task %d not found", id))
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s task %d: %v", op, id, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
