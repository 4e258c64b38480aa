package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TodoItem is the aggregate for a single task.
//
// Fields are unexported so every change goes through NewTodoItem,
// RehydrateTodoItem, UpdateDetails or SetCompletion, which enforce the
// title/note/due day rules. Copies of a TodoItem share no mutable state.
type TodoItem struct {
	id          string
	title       Title
	note        Note
	isCompleted bool
	createdAt   time.Time
	updatedAt   time.Time
	dueDay      Day // zero = no due day
}

// NewTodoItem validates the input and creates an incomplete item with a fresh id.
// Both timestamps are set to now (normalized to UTC). The due day must not be
// earlier than now's UTC calendar day.
func NewTodoItem(title, note string, dueDay Day, now time.Time) (*TodoItem, error) {
	t, err := NewTitle(title)
	if err != nil {
		return nil, err
	}
	n, err := NewNote(note)
	if err != nil {
		return nil, err
	}
	if err := validateDueDay(dueDay, DayOf(now)); err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &TodoItem{
		id:        id,
		title:     t,
		note:      n,
		createdAt: now,
		updatedAt: now,
		dueDay:    dueDay,
	}, nil
}

// RehydrateTodoItem rebuilds an item from persisted fields.
// Title and note are re-validated; the due day is not checked against the
// current date because stored items may legitimately be overdue.
// An empty id is replaced with a fresh one.
func RehydrateTodoItem(id, title, note string, isCompleted bool, createdAt, updatedAt time.Time, dueDay Day) (*TodoItem, error) {
	t, err := NewTitle(title)
	if err != nil {
		return nil, err
	}
	n, err := NewNote(note)
	if err != nil {
		return nil, err
	}

	if id == "" {
		id, err = newID()
		if err != nil {
			return nil, err
		}
	}

	return &TodoItem{
		id:          id,
		title:       t,
		note:        n,
		isCompleted: isCompleted,
		createdAt:   createdAt.UTC(),
		updatedAt:   updatedAt.UTC(),
		dueDay:      dueDay,
	}, nil
}

func newID() (string, error) {
	idObj, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return idObj.String(), nil
}

// UpdateDetails replaces title, note and due day and bumps UpdatedAt.
// All inputs are validated before anything changes, so a failed update
// leaves the item untouched.
func (item *TodoItem) UpdateDetails(title, note string, dueDay Day, now time.Time) error {
	t, err := NewTitle(title)
	if err != nil {
		return err
	}
	n, err := NewNote(note)
	if err != nil {
		return err
	}
	if err := validateDueDay(dueDay, DayOf(now)); err != nil {
		return err
	}

	item.title = t
	item.note = n
	item.dueDay = dueDay
	item.updatedAt = now.UTC()
	return nil
}

// SetCompletion sets the completion flag and bumps UpdatedAt.
func (item *TodoItem) SetCompletion(isCompleted bool, now time.Time) {
	item.isCompleted = isCompleted
	item.updatedAt = now.UTC()
}

// ID returns the immutable identifier.
func (item TodoItem) ID() string { return item.id }

// Title returns the trimmed title.
func (item TodoItem) Title() string { return item.title.String() }

// Note returns the trimmed note, empty when absent.
func (item TodoItem) Note() string { return item.note.String() }

// IsCompleted reports whether the item is done.
func (item TodoItem) IsCompleted() bool { return item.isCompleted }

// CreatedAt returns the creation time in UTC.
func (item TodoItem) CreatedAt() time.Time { return item.createdAt }

// UpdatedAt returns the time of the last mutation in UTC.
func (item TodoItem) UpdatedAt() time.Time { return item.updatedAt }

// DueDay returns the due day; the zero Day means none.
func (item TodoItem) DueDay() Day { return item.dueDay }

// NormalizedTitleKey returns the case- and whitespace-insensitive title key.
func (item TodoItem) NormalizedTitleKey() string {
	return item.title.Key()
}
