package model

import (
	"errors"
	"fmt"
)

// Error kinds. Callers test for a kind with errors.Is.
var (
	// ErrValidation marks missing or malformed parameters. Never retried.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a referenced project, scan or page that does not
	// exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrUpstream marks a failing optional dependency such as the snapshot
	// store. It is recovered locally and never fatal.
	ErrUpstream = errors.New("upstream dependency error")

	// ErrInternal marks malformed input shapes. Surfaced generically.
	ErrInternal = errors.New("internal error")
)

// Error is an error of a known kind raised by an operation.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error

	// Op names the failing operation, e.g. "compare.resolve".
	Op string

	// Err is the underlying cause. May be nil.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation returns an ErrValidation error for op.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// NotFound returns an ErrNotFound error for op.
func NotFound(op, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Op: op, Err: fmt.Errorf(format, args...)}
}

// Upstream wraps err as an ErrUpstream error for op.
func Upstream(op string, err error) error {
	return &Error{Kind: ErrUpstream, Op: op, Err: err}
}

// Internal wraps err as an ErrInternal error for op.
func Internal(op string, err error) error {
	return &Error{Kind: ErrInternal, Op: op, Err: err}
}
