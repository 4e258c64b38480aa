package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length limits, counted in Unicode code points after trimming.
const (
	MinTitleLength = 1
	MaxTitleLength = 120
	MaxNoteLength  = 500
)

// Title is a validated title value object (1-120 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, ErrTitleRequired
	}

	if n := utf8.RuneCountInString(s); n < MinTitleLength || n > MaxTitleLength {
		return Title{}, ErrTitleLength
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}

// Key returns the normalized title key used for duplicate detection.
func (t Title) Key() string {
	return NormalizeTitleKey(t.value)
}

// Note is an optional free-text note (at most 500 characters).
// Empty or whitespace-only input normalizes to the empty Note, meaning "absent".
type Note struct {
	value string
}

// NewNote creates a new Note, trimming and validating the input.
func NewNote(s string) (Note, error) {
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > MaxNoteLength {
		return Note{}, ErrNoteTooLong
	}

	return Note{value: s}, nil
}

// String returns the note value, empty when absent.
func (n Note) String() string {
	return n.value
}

// IsEmpty reports whether the note is absent.
func (n Note) IsEmpty() bool {
	return n.value == ""
}

// NormalizeTitleKey lower-cases s and strips every whitespace character.
// "Plan Sprint", "plansprint" and " PLAN SPRINT " share the key "plansprint".
func NormalizeTitleKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// validateDueDay rejects a due day strictly before the UTC calendar day of now.
func validateDueDay(due Day, now Day) error {
	if due.IsZero() {
		return nil
	}
	if due.Before(now) {
		return ErrDueDayInPast
	}
	return nil
}
