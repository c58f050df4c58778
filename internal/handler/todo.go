package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nmelnikov5/task-manager/internal/auth"
	"github.com/nmelnikov5/task-manager/internal/model"
	"github.com/nmelnikov5/task-manager/internal/service"
)

// TodoHandler manages CRUD operations for todo items.
//
// All four routes sit behind auth.RequireAuth, so by the time a request
// lands here the middleware has already validated the JWT and put the
// caller's identity in the context. The identity's user id — never
// anything from the request body or URL — decides which items the caller
// can see and touch.
type TodoHandler struct {
	todos  *service.TodoService
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todos *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, logger: logger}
}

// listResponse wraps the items array. The envelope ({"data": [...]})
// rather than a bare array is the original API's shape.
type listResponse struct {
	Data []model.TodoItem `json:"data"`
}

// HandleList returns all of the caller's items.
//
// HTTP: GET /api/todo-items
// RESPONSE: 200 {"data": [{...}, ...]} — always an array, [] when empty
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but be safe.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "access denied"})
		return
	}

	items, err := h.todos.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Data: items})
}

// HandleCreate saves a new item for the caller.
//
// HTTP: POST /api/todo-items
// REQUEST BODY: {"text": "buy milk", "dueDate"?: ..., "tags"?: [...], "reminder"?: ...}
// RESPONSE: 201 with the created item (id, defaults and owner filled in)
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "access denied"})
		return
	}

	var input service.CreateTodoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("create todo: invalid JSON body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	item, err := h.todos.Create(r.Context(), id.UserID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// HandleUpdate merges a partial body over an existing item.
//
// HTTP: PUT /api/todo-items/{id}
// REQUEST BODY: any subset of the item's fields
// RESPONSE: 200 with the full updated item
//
// The body is passed to the service as raw JSON rather than a struct:
// the merge has to distinguish "key absent" (keep the old value) from
// "key present with null" (clear the field), and a decoded struct can't
// represent that difference.
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "access denied"})
		return
	}

	itemID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
		return
	}

	patch, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Warn("update todo: reading body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	item, err := h.todos.Update(r.Context(), id.UserID, itemID, json.RawMessage(patch))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// HandleDelete removes one of the caller's items.
//
// HTTP: DELETE /api/todo-items/{id}
// RESPONSE: 204 No Content — successful deletion, no body
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "access denied"})
		return
	}

	itemID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid item id"})
		return
	}

	if err := h.todos.Delete(r.Context(), id.UserID, itemID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} URL parameter. Chi populates r.PathValue for
// named route parameters.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
