package response_test

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/rezkam/monodash/internal/infrastructure/http/response"
)

type benchTodo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Note        string `json:"note,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	DueDay      string `json:"dueDay,omitempty"`
}

type benchState struct {
	Items   []benchTodo    `json:"items"`
	Summary map[string]int `json:"summary"`
	Filter  string         `json:"filter"`
}

func createState(n int) benchState {
	items := make([]benchTodo, n)
	for i := range items {
		items[i] = benchTodo{
			ID:        fmt.Sprintf("01234567-89ab-cdef-0123-%012d", i),
			Title:     fmt.Sprintf("Todo %d", i),
			Note:      "Discuss blockers",
			CreatedAt: "2025-12-26T15:00:00Z",
			UpdatedAt: "2025-12-26T15:00:00Z",
			DueDay:    "2025-12-31",
		}
	}
	return benchState{
		Items:   items,
		Summary: map[string]int{"total": n, "active": n, "completed": 0},
		Filter:  "All",
	}
}

func benchmarkOK(b *testing.B, n int) {
	data := createState(n)
	for b.Loop() {
		w := httptest.NewRecorder()
		response.OK(w, data)
	}
}

func BenchmarkOK_Small(b *testing.B)  { benchmarkOK(b, 1) }
func BenchmarkOK_Medium(b *testing.B) { benchmarkOK(b, 20) }
func BenchmarkOK_Large(b *testing.B)  { benchmarkOK(b, 500) }
