// ABOUTME: Error kinds for storage, resolution, generation, validation and invariant failures
// ABOUTME: Error values unwrap to both their kind and their original cause

package faults

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage marks a Durable Store I/O failure.
	ErrStorage = errors.New("storage error")

	// ErrResolution marks a registry id that has no stored payload.
	ErrResolution = errors.New("resolution error")

	// ErrGeneration marks a failed or rate-limited generation call.
	ErrGeneration = errors.New("generation error")

	// ErrValidation marks input rejected before any mutation.
	ErrValidation = errors.New("validation error")

	// ErrInvariant marks an operation that would violate a structural invariant.
	ErrInvariant = errors.New("invariant violation")
)

// Error is a classified failure. Kind is one of the sentinel errors above,
// Op names the operation that failed and Err is the underlying cause (may be nil).
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil && e.Op == "":
		return e.Kind.Error()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds a classified error. If err already carries the same kind it is
// returned unchanged so repeated classification does not stack prefixes.
func New(kind error, op string, err error) error {
	if err != nil && errors.Is(err, kind) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Storage classifies err as a Durable Store failure.
func Storage(op string, err error) error { return New(ErrStorage, op, err) }

// Resolution classifies err as a resolution failure.
func Resolution(op string, err error) error { return New(ErrResolution, op, err) }

// Generation classifies err as a generation collaborator failure.
func Generation(op string, err error) error { return New(ErrGeneration, op, err) }

// Validation classifies err as rejected input.
func Validation(op string, err error) error { return New(ErrValidation, op, err) }

// Invariant classifies err as an invariant violation.
func Invariant(op string, err error) error { return New(ErrInvariant, op, err) }

// Validationf builds a validation error from a format string.
func Validationf(op, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind carried by err, or nil when err is unclassified.
func KindOf(err error) error {
	for _, kind := range []error{ErrStorage, ErrResolution, ErrGeneration, ErrValidation, ErrInvariant} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
