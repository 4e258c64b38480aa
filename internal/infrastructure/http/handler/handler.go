package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/monodash/internal/application/todo"
	"github.com/rezkam/monodash/internal/domain"
)

// TodoService is the part of the state service the HTTP adapter drives.
type TodoService interface {
	Initialize(ctx context.Context) error
	Reload(ctx context.Context) error
	AddTodo(ctx context.Context, title, note string, dueDay domain.Day) (domain.TodoItem, error)
	UpdateTodo(ctx context.Context, id, title, note string, dueDay domain.Day) (domain.TodoItem, error)
	ToggleTodo(ctx context.Context, id string) (domain.TodoItem, error)
	DeleteTodo(ctx context.Context, id string) error
	SetFilter(ctx context.Context, selection domain.FilterSelection) error
	Subscribe(l todo.Listener) (unsubscribe func())

	Items() []domain.TodoItem
	FilteredItems() []domain.TodoItem
	CurrentFilter() domain.TodoFilter
	Summary() domain.DashboardSummary
	State() todo.Snapshot
}

var _ TodoService = (*todo.StateService)(nil)

// TodoHandler adapts HTTP requests to state service commands and queries.
type TodoHandler struct {
	svc TodoService
}

// NewTodoHandler creates a new HTTP API handler.
func NewTodoHandler(svc TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// NewRouter mounts all API routes on a chi router. Both production code and
// tests use it so routing behaves identically.
func NewRouter(svc TodoService) http.Handler {
	h := NewTodoHandler(svc)

	r := chi.NewRouter()
	r.Route("/todos", func(r chi.Router) {
		r.Get("/", h.ListTodos)
		r.Post("/", h.CreateTodo)
		r.Put("/{id}", h.UpdateTodo)
		r.Post("/{id}/toggle", h.ToggleTodo)
		r.Delete("/{id}", h.DeleteTodo)
	})
	r.Get("/filter", h.GetFilter)
	r.Put("/filter", h.SetFilter)
	r.Get("/summary", h.GetSummary)
	r.Post("/reload", h.Reload)
	r.Get("/events", h.Events)

	return r
}
