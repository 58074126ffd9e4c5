package faults

import (
	"errors"
	"strings"
)

type ErrorCategory string

const (
	ValidationError ErrorCategory = "ValidationError"
	NotFoundError   ErrorCategory = "NotFoundError"
	ConflictError   ErrorCategory = "ConflictError"
	AuthError       ErrorCategory = "AuthError"
	TransportError  ErrorCategory = "TransportError"
	InternalError   ErrorCategory = "InternalError"

	// ResolutionError and MutationError are raised by the reconciler when a
	// remote read or write fails; the transport category stays reachable
	// through the cause chain.
	ResolutionError ErrorCategory = "ResolutionError"
	MutationError   ErrorCategory = "MutationError"
)

type TypedError struct {
	Category  ErrorCategory
	Message   string
	Operation string
	Fields    []string
	Cause     error
}

func (e *TypedError) Error() string {
	if e == nil {
		return "<nil>"
	}

	message := e.Message
	if e.Operation != "" {
		if message != "" {
			message = e.Operation + ": " + message
		} else {
			message = e.Operation
		}
	}
	if len(e.Fields) > 0 {
		message += " (fields: " + strings.Join(e.Fields, ", ") + ")"
	}

	if message != "" && e.Cause != nil {
		return message + ": " + e.Cause.Error()
	}
	if message != "" {
		return message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Category)
}

func (e *TypedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewTypedError(category ErrorCategory, message string, cause error) *TypedError {
	return &TypedError{
		Category: category,
		Message:  message,
		Cause:    cause,
	}
}

// WithOperation returns a copy of the error tagged with the operation that
// raised it.
func (e *TypedError) WithOperation(operation string) *TypedError {
	if e == nil {
		return nil
	}
	cloned := *e
	cloned.Operation = operation
	return &cloned
}

// WithFields returns a copy of the error tagged with the implicated fields.
func (e *TypedError) WithFields(fields ...string) *TypedError {
	if e == nil {
		return nil
	}
	cloned := *e
	cloned.Fields = append(append([]string{}, e.Fields...), fields...)
	return &cloned
}

// IsCategory reports whether any typed error in the chain carries category.
func IsCategory(err error, category ErrorCategory) bool {
	if err == nil {
		return false
	}

	var found bool
	walk(err, func(typedErr *TypedError) bool {
		if typedErr.Category == category {
			found = true
			return false
		}
		return true
	})
	return found
}

// CategoryOf returns the category of the outermost typed error in err.
func CategoryOf(err error) (ErrorCategory, bool) {
	var typedErr *TypedError
	if !errors.As(err, &typedErr) {
		return "", false
	}
	return typedErr.Category, true
}

func walk(err error, visit func(*TypedError) bool) bool {
	if err == nil {
		return true
	}
	if typedErr, ok := err.(*TypedError); ok && typedErr != nil {
		if !visit(typedErr) {
			return false
		}
	}

	switch unwrapped := err.(type) {
	case interface{ Unwrap() []error }:
		for _, item := range unwrapped.Unwrap() {
			if !walk(item, visit) {
				return false
			}
		}
		return true
	case interface{ Unwrap() error }:
		return walk(unwrapped.Unwrap(), visit)
	default:
		return true
	}
}
