// Package mcpserver exposes the task API as MCP tools over stdio.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// listTasksTool returns a tool definition for listing every task.
func listTasksTool() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List every task with its id, title, description and done flag."),
	)
}

// getTaskTool returns a tool definition for fetching one task.
func getTaskTool() mcp.Tool {
	return mcp.NewTool("get_task",
		mcp.WithDescription("Fetch a single task by id."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task id")),
	)
}

// createTaskTool returns a tool definition for creating a task.
func createTaskTool() mcp.Tool {
	return mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task. The server assigns the id and the task starts not done."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title")),
		mcp.WithString("description",
			mcp.Description("Task description (defaults to empty)")),
	)
}

// updateTaskTool returns a tool definition for a partial update.
func updateTaskTool() mcp.Tool {
	return mcp.NewTool("update_task",
		mcp.WithDescription("Update some fields of a task. Fields that are not given keep their value."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task id")),
		mcp.WithString("title",
			mcp.Description("New title")),
		mcp.WithString("description",
			mcp.Description("New description")),
		mcp.WithBoolean("done",
			mcp.Description("New done flag")),
	)
}

// deleteTaskTool returns a tool definition for deleting a task.
func deleteTaskTool() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task by id."),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Task id")),
	)
}
