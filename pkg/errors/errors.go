// Package errors provides structured error types for netforce.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into a few groups:
//   - INVALID_*: input and configuration validation failures
//   - PARSE_ERROR, DANGLING_EDGE: graph source problems
//   - RANK_LOOKUP: an alternate node order that does not fit the graph
//   - NOT_FOUND, FILE_NOT_FOUND: missing resources
//   - INTERNAL_ERROR, UNSUPPORTED: unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParse, "line %d: missing root element", line)
//	if errors.Is(err, errors.ErrCodeParse) {
//	    // Handle a malformed source
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRankLookup, origErr, "apply order %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Graph source errors. A parse error is fatal for the source; a dangling
	// edge is reported as a warning and the edge is skipped.
	ErrCodeParse        Code = "PARSE_ERROR"
	ErrCodeDanglingEdge Code = "DANGLING_EDGE"

	// Alternate order errors
	ErrCodeRankLookup Code = "RANK_LOOKUP"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// It unwraps the error chain looking for an *Error with a matching code.
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

// IsFatal reports whether an error with the given code must abort the
// operation that produced it. Dangling edges are the only recoverable kind.
func (c Code) IsFatal() bool {
	return c != ErrCodeDanglingEdge
}
