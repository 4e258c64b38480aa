package handler

import (
	"time"

	"github.com/rezkam/monodash/internal/domain"
	"github.com/rezkam/monodash/internal/ptr"
)

// TodoResponse is the JSON shape of a single todo.
type TodoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Note        *string   `json:"note,omitempty"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	DueDay      *string   `json:"dueDay,omitempty"`
}

// SummaryResponse carries the dashboard counts.
type SummaryResponse struct {
	Total     int    `json:"total"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
	Filter    string `json:"filter"`
}

// FilterResponse is returned by the filter endpoints.
type FilterResponse struct {
	Selection string `json:"selection"`
}

// StateResponse is returned by GET /todos.
type StateResponse struct {
	Items   []TodoResponse  `json:"items"`
	Summary SummaryResponse `json:"summary"`
	Filter  FilterResponse  `json:"filter"`
}

// TodoRequest is the body of create and update requests.
// Omitted note and dueDay clear the field.
type TodoRequest struct {
	Title  string  `json:"title"`
	Note   *string `json:"note"`
	DueDay *string `json:"dueDay"`
}

// FilterRequest is the body of PUT /filter.
type FilterRequest struct {
	Selection string `json:"selection"`
}

func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return ptr.To(s)
}

func todoToResponse(item domain.TodoItem) TodoResponse {
	var due *string
	if !item.DueDay().IsZero() {
		due = ptr.To(item.DueDay().String())
	}
	return TodoResponse{
		ID:          item.ID(),
		Title:       item.Title(),
		Note:        ptrString(item.Note()),
		IsCompleted: item.IsCompleted(),
		CreatedAt:   item.CreatedAt(),
		UpdatedAt:   item.UpdatedAt(),
		DueDay:      due,
	}
}

func todosToResponse(items []domain.TodoItem) []TodoResponse {
	out := make([]TodoResponse, 0, len(items))
	for _, item := range items {
		out = append(out, todoToResponse(item))
	}
	return out
}

func summaryToResponse(s domain.DashboardSummary) SummaryResponse {
	return SummaryResponse{
		Total:     s.Total,
		Active:    s.Active,
		Completed: s.Completed,
		Filter:    s.Filter.String(),
	}
}

func filterToResponse(f domain.TodoFilter) FilterResponse {
	return FilterResponse{Selection: f.Selection().String()}
}

// fields converts a request into domain inputs. An invalid due day is
// reported as a domain validation error.
func (req TodoRequest) fields() (title, note string, due domain.Day, err error) {
	due, err = domain.ParseDay(ptr.Deref(req.DueDay, ""))
	if err != nil {
		return "", "", domain.Day{}, err
	}
	return req.Title, ptr.Deref(req.Note, ""), due, nil
}
