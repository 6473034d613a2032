// Package errors provides structured error types for typegraph.
//
// Every failure raised by the graph store, the wire codec, and the services
// built on top of them carries a machine-readable [Code]. Callers branch on the
// code with [Is] instead of matching message text:
//
//	if _, err := g.AddEdge("a", "b", link); errors.Is(err, errors.ErrCodeInvalidEdgeType) {
//	    // the schema rejected the edge
//	}
//
// # Error Codes
//
// The graph taxonomy:
//   - MISSING_IDENTITY / MISSING_TYPE: a payload's id or type lookup returned nothing
//   - MISSING_NODE_ID / MISSING_EDGE_ID: an operation referenced an absent id
//   - INVALID_NODE_TYPE / INVALID_EDGE_TYPE: the schema rejected the mutation
//   - MISSING_FIELD: a wire document lacked a required field
//
// Ambient codes (INVALID_INPUT, NOT_FOUND, ...) are used by the CLI, the
// snapshot stores and the HTTP server.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph taxonomy
	ErrCodeMissingIdentity Code = "MISSING_IDENTITY"
	ErrCodeMissingType     Code = "MISSING_TYPE"
	ErrCodeMissingNodeID   Code = "MISSING_NODE_ID"
	ErrCodeMissingEdgeID   Code = "MISSING_EDGE_ID"
	ErrCodeInvalidNodeType Code = "INVALID_NODE_TYPE"
	ErrCodeInvalidEdgeType Code = "INVALID_EDGE_TYPE"
	ErrCodeMissingField    Code = "MISSING_FIELD"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidSchema Code = "INVALID_SCHEMA"
	ErrCodeInvalidKey    Code = "INVALID_KEY"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeCorruptGraph Code = "CORRUPT_GRAPH"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
	ErrCodeUnsupported  Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code, so
// errors wrapped with fmt.Errorf("...: %w") keep their code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
