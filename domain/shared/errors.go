/*
Package shared - error machinery common to the domain packages.

Sentinel errors support errors.Is() checks; structured errors capture the
call stack at creation time and format it lazily, so the API layer can log
the point where an error originated without the domain knowing anything
about transports or status codes.
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	// ErrNotFound generic "resource not found"
	ErrNotFound = errors.New("not found")

	// ErrConflict resource conflict (concurrent modification, unique constraint)
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput parameter validation failure
	ErrInvalidInput = errors.New("invalid input")
)

// DomainError carries business context plus the stack captured where the
// error was created.
type DomainError struct {
	// Err underlying sentinel, for errors.Is()
	Err error

	// Entity the entity this error refers to ("cart", "cart_item", "book")
	Entity string

	// Message human readable description
	Message string

	// Field optional field name for validation errors
	Field string

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack formats the captured stack on demand (only called when logging).
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack captures the current call stack.
// skip is usually 3: Callers, CaptureStack, NewXxxError.
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders stack frames, filtering runtime internals, max 10 frames.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}

// NewValidationError creates a validation failure domain error.
func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// Stacker is implemented by errors that can expose their origin stack.
type Stacker interface {
	Stack() []string
}
