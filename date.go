package kaimono

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component. Purchase events are
// dated, not timestamped: the upstream feed only reports the day an order
// was placed.
type Date struct {
	t time.Time
}

// ParseDate parses an ISO date ("2006-01-02").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t.UTC()}, nil
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// MustDate parses an ISO date and panics on failure. Intended for
// literals in tests and fixtures.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) IsZero() bool       { return d.t.IsZero() }

// MarshalJSON encodes the date as an ISO string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes an ISO date string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Range is a closed date interval with Start <= End, used as the fetch
// window handed to the external source.
type Range struct {
	Start Date
	End   Date
}

// NewRange builds a range, rejecting inverted intervals.
func NewRange(start, end Date) (Range, error) {
	if start.After(end) {
		return Range{}, &InvalidRangeError{Start: start, End: end, Reason: "start after end"}
	}
	return Range{Start: start, End: end}, nil
}

// EndAfter reports whether the range ends strictly after the given date.
func (r Range) EndAfter(d Date) bool {
	return r.End.After(d)
}

// Contains reports whether d lies within the closed interval.
func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// ValidateForFetch rejects ranges that reach into today or the future.
// The source's data for the current day may still be incomplete, so a
// fetch window must end on yesterday at the latest.
func (r Range) ValidateForFetch(today Date) error {
	if !r.End.Before(today) {
		return &InvalidRangeError{Start: r.Start, End: r.End, Reason: "end must be before today (" + today.String() + ")"}
	}
	return nil
}

func (r Range) String() string {
	return r.Start.String() + ".." + r.End.String()
}
