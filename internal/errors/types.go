package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// ErrorTypeConfig is raised while constructing a client
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeValidation is raised per call, before anything is sent
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNetwork comes from the fetch collaborator
	ErrorTypeNetwork  ErrorType = "network"
	ErrorTypeInternal ErrorType = "internal"
	ErrorTypeMCP      ErrorType = "mcp"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Context map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same type, so typed sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	if targetErr, ok := target.(*Error); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new Error
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
		Cause:   err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	return Wrap(err, errType, fmt.Sprintf(format, args...))
}

// Newf creates a new Error with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return New(errType, fmt.Sprintf(format, args...))
}

// Sentinel returns a bare error of the given type for use with errors.Is
func Sentinel(errType ErrorType) *Error {
	return &Error{Type: errType, Message: string(errType) + " error"}
}

// IsType checks if an error, or anything it wraps, is of a specific type
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Type == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// GetType returns the error type, or ErrorTypeInternal if not an *Error
func GetType(err error) ErrorType {
	if e, ok := err.(*Error); ok {
		return e.Type
	}
	return ErrorTypeInternal
}

// GetContext returns context information from the error
func GetContext(err error) map[string]interface{} {
	if e, ok := err.(*Error); ok {
		return e.Context
	}
	return nil
}
