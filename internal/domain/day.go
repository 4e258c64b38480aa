package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DayLayout is the wire format of a calendar day.
const DayLayout = "2006-01-02"

// Day is a calendar date without time of day or zone.
// The zero value means "no day" and is used for optional due days.
type Day struct {
	year  int
	month time.Month
	day   int
}

// NewDay creates a Day, rejecting dates that do not exist (e.g. Feb 30).
func NewDay(year int, month time.Month, day int) (Day, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Day{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDay, year, int(month), day)
	}
	return Day{year: year, month: month, day: day}, nil
}

// DayOf returns the UTC calendar day of t.
func DayOf(t time.Time) Day {
	y, m, d := t.UTC().Date()
	return Day{year: y, month: m, day: d}
}

// ParseDay parses a YYYY-MM-DD string. An empty string yields the zero Day.
func ParseDay(s string) (Day, error) {
	if s == "" {
		return Day{}, nil
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return DayOf(t), nil
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

// Date returns the year, month and day components.
func (d Day) Date() (int, time.Month, int) {
	return d.year, d.month, d.day
}

// Time returns midnight UTC of d.
func (d Day) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DayLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON encodes the zero Day as null.
func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a YYYY-MM-DD string or null.
func (d *Day) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Day{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDay, string(b))
	}
	return d.UnmarshalText([]byte(s))
}
