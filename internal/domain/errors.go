package domain

import (
	"errors"
	"fmt"
)

// Error categories. Callers match them with errors.Is.
var (
	// ErrValidation indicates invalid title, note or due day input.
	// The specific errors below all wrap it.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateTitle indicates another todo already has the same normalized title.
	ErrDuplicateTitle = errors.New("a todo with the same title already exists")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrStorage indicates the persistence transport failed while saving.
	// The in-memory state has already changed when this is returned.
	ErrStorage = errors.New("storage failure")
)

// Validation errors.
var (
	ErrTitleRequired = fmt.Errorf("%w: title is required", ErrValidation)
	ErrTitleLength   = fmt.Errorf("%w: title must be between %d and %d characters", ErrValidation, MinTitleLength, MaxTitleLength)
	ErrNoteTooLong   = fmt.Errorf("%w: note cannot exceed %d characters", ErrValidation, MaxNoteLength)
	ErrDueDayInPast  = fmt.Errorf("%w: due day cannot be set in the past", ErrValidation)
	ErrInvalidDay    = fmt.Errorf("%w: invalid calendar day", ErrValidation)
	ErrInvalidFilter = fmt.Errorf("%w: filter must be All, Active or Completed", ErrValidation)
)

// ErrTodoNotFound indicates the referenced todo id is not in the collection.
var ErrTodoNotFound = fmt.Errorf("todo %w", ErrNotFound)
