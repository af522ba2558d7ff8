package kaimono

import (
	"errors"
	"fmt"
)

// Common errors returned by the kaimono client.
var (
	// ErrNotFound is returned when a row cannot be located by id.
	ErrNotFound = errors.New("record not found")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrNoSource is returned when a sync is requested but no purchase
	// source is configured.
	ErrNoSource = errors.New("no purchase source configured")
)

// Kind classifies a persistence failure.
type Kind int

const (
	// KindTransport marks connection-level failures. These are the only
	// retryable persistence errors; the sync cycle is idempotent, so
	// callers may simply re-run it.
	KindTransport Kind = iota

	// KindNotFound marks a missing row where one was required.
	KindNotFound

	// KindConstraint marks uniqueness or foreign-key violations.
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindNotFound:
		return "not found"
	case KindConstraint:
		return "constraint"
	default:
		return "unknown"
	}
}

// PersistenceError is returned when a unit of work fails against the store.
// Extractable via errors.As(). Supports Unwrap().
type PersistenceError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Retryable reports whether re-running the failed work may succeed.
func (e *PersistenceError) Retryable() bool { return e.Kind == KindTransport }

// IsConstraint reports whether err is a constraint-kind persistence error.
func IsConstraint(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Kind == KindConstraint
}

// InvalidRangeError is returned when a date range is rejected before any
// I/O is attempted, either because it is inverted or because it reaches
// into today or the future.
type InvalidRangeError struct {
	Start  Date
	End    Date
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %s..%s: %s", e.Start, e.End, e.Reason)
}

// SourceError is returned when the external purchase source fails.
// Supports Unwrap().
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source: %s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// ValidationError is returned when configuration validation fails.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}
