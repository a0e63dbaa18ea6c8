package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JamesPrial/todo-api/internal/api"
	"github.com/JamesPrial/todo-api/internal/client"
	"github.com/JamesPrial/todo-api/internal/storage"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// fakeClient is an in-memory TaskClient.
type fakeClient struct {
	mu     sync.Mutex
	tasks  map[int]storage.Task
	nextID int
	calls  int
	err    error
	last   client.UpdateRequest
}

func newFakeClient() *fakeClient {
	fc := &fakeClient{tasks: make(map[int]storage.Task), nextID: 3}
	for _, task := range storage.SeedTasks() {
		fc.tasks[task.ID] = task
	}
	return fc
}

func (f *fakeClient) List(context.Context) ([]storage.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]storage.Task, 0, len(f.tasks))
	for id := 1; id < f.nextID; id++ {
		if task, ok := f.tasks[id]; ok {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeClient) Get(_ context.Context, id int) (storage.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return storage.Task{}, f.err
	}
	task, ok := f.tasks[id]
	if !ok {
		return storage.Task{}, &client.APIError{StatusCode: http.StatusNotFound, Message: "Not found"}
	}
	return task, nil
}

func (f *fakeClient) Create(_ context.Context, title, description string) (storage.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return storage.Task{}, f.err
	}
	task := storage.Task{ID: f.nextID, Title: title, Description: description}
	f.tasks[task.ID] = task
	f.nextID++
	return task, nil
}

func (f *fakeClient) Update(_ context.Context, id int, req client.UpdateRequest) (storage.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	if f.err != nil {
		return storage.Task{}, f.err
	}
	task, ok := f.tasks[id]
	if !ok {
		return storage.Task{}, &client.APIError{StatusCode: http.StatusNotFound, Message: "Not found"}
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Done != nil {
		task.Done = *req.Done
	}
	f.tasks[id] = task
	return task, nil
}

func (f *fakeClient) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	if _, ok := f.tasks[id]; !ok {
		return &client.APIError{StatusCode: http.StatusNotFound, Message: "Not found"}
	}
	delete(f.tasks, id)
	return nil
}

func makeRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the text from the first content element of a result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("result is nil")
	}
	if len(result.Content) == 0 {
		t.Fatal("result has no Content elements")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("result.Content[0] is %T, want mcp.TextContent", result.Content[0])
	}
	return tc.Text
}

// assertTextContains checks that the result text contains the given substring.
func assertTextContains(t *testing.T, result *mcp.CallToolResult, substr string) {
	t.Helper()
	text := resultText(t, result)
	if !strings.Contains(text, substr) {
		t.Errorf("result text = %q, want it to contain %q", text, substr)
	}
}

func assertIsError(t *testing.T, result *mcp.CallToolResult, want bool) {
	t.Helper()
	if result == nil {
		t.Fatal("result is nil")
	}
	if result.IsError != want {
		t.Errorf("result.IsError = %v, want %v (text: %q)", result.IsError, want, resultText(t, result))
	}
}

func decodeTask(t *testing.T, result *mcp.CallToolResult) storage.Task {
	t.Helper()
	var task storage.Task
	if err := json.Unmarshal([]byte(resultText(t, result)), &task); err != nil {
		t.Fatalf("result is not a task: %v", err)
	}
	return task
}

// ---------------------------------------------------------------------------
// HandleListTasks
// ---------------------------------------------------------------------------

func Test_HandleListTasks(t *testing.T) {
	t.Parallel()
	h := NewHandlers(newFakeClient())

	result, err := h.HandleListTasks(context.Background(), makeRequest("list_tasks", nil))
	if err != nil {
		t.Fatalf("HandleListTasks() error: %v", err)
	}
	assertIsError(t, result, false)

	var body struct {
		Tasks []storage.Task `json:"tasks"`
		Count int            `json:"count"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Count != 2 || len(body.Tasks) != 2 {
		t.Errorf("got %d tasks (count %d), want 2", len(body.Tasks), body.Count)
	}
}

func Test_HandleListTasks_ClientError(t *testing.T) {
	t.Parallel()
	fc := newFakeClient()
	fc.err = errors.New("connection refused")

	result, _ := NewHandlers(fc).HandleListTasks(context.Background(), makeRequest("list_tasks", nil))
	assertIsError(t, result, true)
	assertTextContains(t, result, "connection refused")
}

// ---------------------------------------------------------------------------
// HandleGetTask
// ---------------------------------------------------------------------------

func Test_HandleGetTask_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		wantText  string
	}{
		{"found", map[string]any{"id": float64(1)}, false, "Buy groceries"},
		{"int id", map[string]any{"id": 2}, false, "French names"},
		{"not found", map[string]any{"id": float64(99)}, true, "Task 99 not found"},
		{"missing args", nil, true, "Missing required parameter: id"},
		{"missing id", map[string]any{}, true, "Missing required parameter: id"},
		{"string id", map[string]any{"id": "1"}, true, "must be a number"},
		{"fractional id", map[string]any{"id": 1.5}, true, "Invalid task id"},
		{"zero id", map[string]any{"id": float64(0)}, true, "Invalid task id"},
		{"negative id", map[string]any{"id": float64(-3)}, true, "Invalid task id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewHandlers(newFakeClient())

			result, err := h.HandleGetTask(context.Background(), makeRequest("get_task", tt.args))
			if err != nil {
				t.Fatalf("HandleGetTask() error: %v", err)
			}
			assertIsError(t, result, tt.wantError)
			assertTextContains(t, result, tt.wantText)
		})
	}
}

// ---------------------------------------------------------------------------
// HandleCreateTask
// ---------------------------------------------------------------------------

func Test_HandleCreateTask(t *testing.T) {
	t.Parallel()
	h := NewHandlers(newFakeClient())

	result, err := h.HandleCreateTask(context.Background(), makeRequest("create_task", map[string]any{
		"title":       "Read",
		"description": "a book",
	}))
	if err != nil {
		t.Fatalf("HandleCreateTask() error: %v", err)
	}
	assertIsError(t, result, false)

	task := decodeTask(t, result)
	want := storage.Task{ID: 3, Title: "Read", Description: "a book"}
	if task != want {
		t.Errorf("created = %+v, want %+v", task, want)
	}
}

func Test_HandleCreateTask_MissingTitle(t *testing.T) {
	t.Parallel()
	fc := newFakeClient()
	h := NewHandlers(fc)

	for _, args := range []map[string]any{nil, {}, {"title": 7}, {"description": "x"}} {
		result, _ := h.HandleCreateTask(context.Background(), makeRequest("create_task", args))
		assertIsError(t, result, true)
	}
	if fc.calls != 0 {
		t.Errorf("client called %d times for invalid input, want 0", fc.calls)
	}
}

// ---------------------------------------------------------------------------
// HandleUpdateTask
// ---------------------------------------------------------------------------

func Test_HandleUpdateTask_PartialFields(t *testing.T) {
	t.Parallel()
	fc := newFakeClient()
	h := NewHandlers(fc)

	result, err := h.HandleUpdateTask(context.Background(), makeRequest("update_task", map[string]any{
		"id":   float64(1),
		"done": true,
	}))
	if err != nil {
		t.Fatalf("HandleUpdateTask() error: %v", err)
	}
	assertIsError(t, result, false)

	task := decodeTask(t, result)
	if !task.Done || task.Title != "Buy groceries" {
		t.Errorf("updated = %+v, want done with title unchanged", task)
	}
	if fc.last.Title != nil || fc.last.Description != nil {
		t.Errorf("only done should be sent, got %+v", fc.last)
	}
}

func Test_HandleUpdateTask_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     map[string]any
		wantText string
	}{
		{"no fields", map[string]any{"id": float64(1)}, "Nothing to update"},
		{"done not bool", map[string]any{"id": float64(1), "done": "yes"}, "done must be a boolean"},
		{"title not string", map[string]any{"id": float64(1), "title": 5}, "title must be a string"},
		{"description not string", map[string]any{"id": float64(1), "description": false}, "description must be a string"},
		{"missing id", map[string]any{"done": true}, "Missing required parameter: id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fc := newFakeClient()

			result, _ := NewHandlers(fc).HandleUpdateTask(context.Background(), makeRequest("update_task", tt.args))
			assertIsError(t, result, true)
			assertTextContains(t, result, tt.wantText)
			if fc.calls != 0 {
				t.Errorf("client called %d times, want 0", fc.calls)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// HandleDeleteTask
// ---------------------------------------------------------------------------

func Test_HandleDeleteTask(t *testing.T) {
	t.Parallel()
	h := NewHandlers(newFakeClient())
	ctx := context.Background()

	result, _ := h.HandleDeleteTask(ctx, makeRequest("delete_task", map[string]any{"id": float64(2)}))
	assertIsError(t, result, false)
	assertTextContains(t, result, "Deleted task 2")

	result, _ = h.HandleDeleteTask(ctx, makeRequest("delete_task", map[string]any{"id": float64(2)}))
	assertIsError(t, result, true)
	assertTextContains(t, result, "Task 2 not found")
}

// ---------------------------------------------------------------------------
// End to end against the HTTP API
// ---------------------------------------------------------------------------

func Test_Handlers_AgainstAPI(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	store := storage.NewTaskStore(storage.NewFileMirror(t.TempDir()), nil)
	if err := store.Seed(context.Background(), storage.SeedTasks()...); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	ts := httptest.NewServer(api.NewServer(store, api.Options{Username: "miguel", Password: "python"}))
	t.Cleanup(ts.Close)

	c, err := client.New(ts.URL, "miguel", "python", client.WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("client.New() error: %v", err)
	}
	h := NewHandlers(c)
	ctx := context.Background()

	result, _ := h.HandleCreateTask(ctx, makeRequest("create_task", map[string]any{"title": "X"}))
	assertIsError(t, result, false)
	if got := decodeTask(t, result); got.ID != 3 {
		t.Fatalf("created id = %d, want 3", got.ID)
	}

	result, _ = h.HandleUpdateTask(ctx, makeRequest("update_task", map[string]any{"id": float64(3), "done": false}))
	assertIsError(t, result, false)

	result, _ = h.HandleDeleteTask(ctx, makeRequest("delete_task", map[string]any{"id": float64(3)}))
	assertIsError(t, result, false)

	result, _ = h.HandleGetTask(ctx, makeRequest("get_task", map[string]any{"id": float64(3)}))
	assertIsError(t, result, true)
	assertTextContains(t, result, "Task 3 not found")

	if store.Len() != 2 {
		t.Errorf("store has %d tasks, want 2", store.Len())
	}
}
