package kvstore

import (
	"time"

	"github.com/rezkam/monodash/internal/domain"
)

// todoRecord is the persisted shape of one item under ItemsKey.
type todoRecord struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Note        string      `json:"note,omitempty"`
	IsCompleted bool        `json:"isCompleted"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	DueDay      *domain.Day `json:"dueDay,omitempty"`
}

// filterRecord is the persisted shape under FilterKey. Selection stays a
// plain string so unknown names can be detected and reset.
type filterRecord struct {
	Selection string `json:"selection"`
}

func recordFromDomain(item domain.TodoItem) todoRecord {
	rec := todoRecord{
		ID:          item.ID(),
		Title:       item.Title(),
		Note:        item.Note(),
		IsCompleted: item.IsCompleted(),
		CreatedAt:   item.CreatedAt().UTC(),
		UpdatedAt:   item.UpdatedAt().UTC(),
	}
	if due := item.DueDay(); !due.IsZero() {
		rec.DueDay = &due
	}
	return rec
}

func (r todoRecord) toDomain() (*domain.TodoItem, error) {
	var due domain.Day
	if r.DueDay != nil {
		due = *r.DueDay
	}
	return domain.RehydrateTodoItem(r.ID, r.Title, r.Note, r.IsCompleted, r.CreatedAt, r.UpdatedAt, due)
}
