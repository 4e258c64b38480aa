package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/monodash/internal/infrastructure/http/response"
)

// View names accepted by GET /todos.
const (
	viewFiltered = "filtered"
	viewAll      = "all"
)

// ListTodos returns items, summary and filter.
// GET /api/todos?view=filtered|all
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view == "" {
		view = viewFiltered
	}
	if view != viewFiltered && view != viewAll {
		response.ValidationError(w, "view", "must be filtered or all")
		return
	}

	if err := h.svc.Initialize(r.Context()); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	state := h.svc.State()
	items := state.Filtered
	if view == viewAll {
		items = state.Items
	}

	response.OK(w, StateResponse{
		Items:   todosToResponse(items),
		Summary: summaryToResponse(state.Summary),
		Filter:  filterToResponse(state.Filter),
	})
}

// CreateTodo adds a new todo.
// POST /api/todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req TodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	title, note, due, err := req.fields()
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	item, err := h.svc.AddTodo(r.Context(), title, note, due)
	if err != nil {
		slog.WarnContext(r.Context(), "failed to add todo via HTTP", "title", title, "error", err)
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, todoToResponse(item))
}

// UpdateTodo replaces title, note and due day of an existing todo.
// PUT /api/todos/{id}
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req TodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	title, note, due, err := req.fields()
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	item, err := h.svc.UpdateTodo(r.Context(), id, title, note, due)
	if err != nil {
		slog.WarnContext(r.Context(), "failed to update todo via HTTP", "id", id, "error", err)
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, todoToResponse(item))
}

// ToggleTodo flips the completion flag.
// POST /api/todos/{id}/toggle
func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.svc.ToggleTodo(r.Context(), id)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, todoToResponse(item))
}

// DeleteTodo removes a todo.
// DELETE /api/todos/{id}
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteTodo(r.Context(), id); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.NoContent(w)
}

