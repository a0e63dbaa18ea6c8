// Package main implements the MCP server for the task API.
//
// The server exposes the task routes as MCP tools and forwards each call to
// a running API instance. Communicates via stdio JSON-RPC (Model Context
// Protocol).
//
// Environment:
//
//	TODO_API_URL       base URL of the API (default http://localhost:5000)
//	TODO_API_USERNAME  Basic auth user (default miguel)
//	TODO_API_PASSWORD  Basic auth password (default python)
package main

import (
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/JamesPrial/todo-api/internal/client"
	"github.com/JamesPrial/todo-api/internal/mcpserver"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run() int {
	errLogger := log.New(os.Stderr, "[mcp-server] ", log.LstdFlags)

	c, err := client.New(
		getenv("TODO_API_URL", "http://localhost:5000"),
		getenv("TODO_API_USERNAME", "miguel"),
		getenv("TODO_API_PASSWORD", "python"),
	)
	if err != nil {
		errLogger.Printf("Failed to create API client: %v", err)
		return 1
	}

	srv, err := mcpserver.NewServer(c)
	if err != nil {
		errLogger.Printf("Failed to create MCP server: %v", err)
		return 1
	}

	if err := server.ServeStdio(srv, server.WithErrorLogger(errLogger)); err != nil {
		errLogger.Printf("Server error: %v", err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(run())
}
