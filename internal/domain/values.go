package domain

import (
	"fmt"
	"strings"
)

// FilterSelection is the active view mode of the dashboard.
// Value object - immutable enum.
type FilterSelection int

const (
	FilterAll FilterSelection = iota
	FilterActive
	FilterCompleted
)

var filterSelectionNames = [...]string{
	FilterAll:       "All",
	FilterActive:    "Active",
	FilterCompleted: "Completed",
}

// IsValidSelection reports whether s is one of All, Active or Completed.
func IsValidSelection(s FilterSelection) bool {
	return s >= FilterAll && s <= FilterCompleted
}

// ParseFilterSelection parses a selection name case-insensitively.
func ParseFilterSelection(name string) (FilterSelection, bool) {
	name = strings.TrimSpace(name)
	for i, n := range filterSelectionNames {
		if strings.EqualFold(n, name) {
			return FilterSelection(i), true
		}
	}
	return FilterAll, false
}

// String returns the selection name, or "All" for unknown values.
func (s FilterSelection) String() string {
	if !IsValidSelection(s) {
		return filterSelectionNames[FilterAll]
	}
	return filterSelectionNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s FilterSelection) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names are
// rejected with ErrInvalidFilter and leave s unchanged.
func (s *FilterSelection) UnmarshalText(b []byte) error {
	parsed, ok := ParseFilterSelection(string(b))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidFilter, string(b))
	}
	*s = parsed
	return nil
}

// TodoFilter is the current view filter. It always holds a valid selection.
type TodoFilter struct {
	selection FilterSelection
}

// DefaultFilter returns the All filter.
func DefaultFilter() TodoFilter {
	return TodoFilter{selection: FilterAll}
}

// FilterFromSelection builds a filter, coercing invalid selections to All.
func FilterFromSelection(s FilterSelection) TodoFilter {
	if !IsValidSelection(s) {
		s = FilterAll
	}
	return TodoFilter{selection: s}
}

// Selection returns the filter's selection.
func (f TodoFilter) Selection() FilterSelection {
	return f.selection
}

// WithSelection returns a new filter with the given selection.
func (f TodoFilter) WithSelection(s FilterSelection) TodoFilter {
	return FilterFromSelection(s)
}

// Matches reports whether item is visible under the filter.
func (f TodoFilter) Matches(item TodoItem) bool {
	switch f.selection {
	case FilterActive:
		return !item.IsCompleted()
	case FilterCompleted:
		return item.IsCompleted()
	default:
		return true
	}
}

// DashboardSummary holds the derived counts shown on the dashboard.
// Completed always equals Total - Active. Never persisted.
type DashboardSummary struct {
	Total     int
	Active    int
	Completed int
	Filter    FilterSelection
}

// Summarize counts items and echoes the filter selection.
func Summarize(items []*TodoItem, filter TodoFilter) DashboardSummary {
	active := 0
	for _, item := range items {
		if !item.IsCompleted() {
			active++
		}
	}
	return DashboardSummary{
		Total:     len(items),
		Active:    active,
		Completed: len(items) - active,
		Filter:    filter.Selection(),
	}
}
