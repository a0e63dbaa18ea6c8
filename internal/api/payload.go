package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesPrial/todo-api/internal/storage"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20 // 1MB

// errBadRequest marks payloads that must be answered with 400.
var errBadRequest = errors.New("bad request")

// object is a decoded JSON request body, keyed by field name.
// Raw values let handlers tell "absent" from "present with any value".
type object map[string]json.RawMessage

// readObject decodes the request body as a non-empty JSON object.
//
// An empty body, invalid JSON, a non-object value, null, or {} are all
// rejected with errBadRequest. The Content-Type header is not consulted.
func readObject(c *gin.Context) (object, error) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", errBadRequest, err)
	}

	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: body is not a JSON object: %v", errBadRequest, err)
	}
	if len(obj) == 0 {
		return nil, fmt.Errorf("%w: body is empty", errBadRequest)
	}
	return obj, nil
}

// has reports whether key was present in the body, whatever its value.
func (o object) has(key string) bool {
	_, ok := o[key]
	return ok
}

// text returns the value of key as text.
//
// Strings are returned as-is, null becomes "", and any other JSON value is
// returned as its compact JSON text.
func (o object) text(key string) string {
	raw := o[key]

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

// boolean returns the value of key if it is a JSON boolean.
func (o object) boolean(key string) (bool, bool) {
	var v any
	if err := json.Unmarshal(o[key], &v); err != nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// createRequest is the validated input of a create.
type createRequest struct {
	Title       string
	Description string
}

// parseCreate validates a create body: "title" must be present.
func parseCreate(obj object) (createRequest, error) {
	if !obj.has("title") {
		return createRequest{}, fmt.Errorf("%w: missing title", errBadRequest)
	}

	req := createRequest{Title: obj.text("title")}
	if obj.has("description") {
		req.Description = obj.text("description")
	}
	return req, nil
}

// parseUpdate turns an update body into a patch.
//
// Only "done" is type-checked and must be a JSON boolean when present.
// Unknown keys are ignored.
func parseUpdate(obj object) (storage.TaskPatch, error) {
	var patch storage.TaskPatch

	if obj.has("done") {
		done, ok := obj.boolean("done")
		if !ok {
			return storage.TaskPatch{}, fmt.Errorf("%w: done must be a boolean", errBadRequest)
		}
		patch.Done = &done
	}
	if obj.has("title") {
		title := obj.text("title")
		patch.Title = &title
	}
	if obj.has("description") {
		description := obj.text("description")
		patch.Description = &description
	}

	return patch, nil
}
