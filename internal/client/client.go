// Package client is a typed Go client for the task HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JamesPrial/todo-api/internal/api"
	"github.com/JamesPrial/todo-api/internal/storage"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// UpdateRequest lists the fields to change. Nil fields are left untouched.
type UpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Done        *bool   `json:"done,omitempty"`
}

// Client talks to one API server as one identity.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the server at baseURL, e.g. "http://localhost:5000".
func New(baseURL, username, password string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/") + api.BasePath,
		username: username,
		password: password,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List returns every task.
func (c *Client) List(ctx context.Context) ([]storage.Task, error) {
	var out struct {
		Tasks []storage.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// Get returns the task with the given id.
func (c *Client) Get(ctx context.Context, id int) (storage.Task, error) {
	var out struct {
		Task storage.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &out); err != nil {
		return storage.Task{}, err
	}
	return out.Task, nil
}

// Create adds a task and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, title, description string) (storage.Task, error) {
	in := map[string]string{"title": title, "description": description}
	var out struct {
		Task storage.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks", in, &out); err != nil {
		return storage.Task{}, err
	}
	return out.Task, nil
}

// Update applies req to the task and returns the updated task.
func (c *Client) Update(ctx context.Context, id int, req UpdateRequest) (storage.Task, error) {
	var out struct {
		Task storage.Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, taskPath(id), req, &out); err != nil {
		return storage.Task{}, err
	}
	return out.Task, nil
}

// Delete removes the task.
func (c *Client) Delete(ctx context.Context, id int) error {
	var out struct {
		Result bool `json:"result"`
	}
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, &out); err != nil {
		return err
	}
	if !out.Result {
		return fmt.Errorf("delete task %d: server reported failure", id)
	}
	return nil
}

func taskPath(id int) string {
	return "/tasks/" + strconv.Itoa(id)
}

// do sends one request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
