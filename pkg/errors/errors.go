// Package errors provides structured error types for the Anchorage engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across library, CLI, and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Configuration errors (duplicate IDs, missing anchors, unsatisfiable
// stretch constraints) are detected at scene load or at first resolution of
// the offending node and are never silently corrected. Lookup failures are
// recoverable and carry NODE_NOT_FOUND.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateID, "duplicate node id: %s", id)
//	if errors.Is(err, errors.ErrCodeDuplicateID) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFontNotFound, origErr, "measure %q", text)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Scene configuration errors
	ErrCodeDuplicateID         Code = "DUPLICATE_ID"
	ErrCodeMissingAnchor       Code = "MISSING_ANCHOR"
	ErrCodeNegativeExtent      Code = "NEGATIVE_EXTENT"
	ErrCodeAspectUnsatisfiable Code = "ASPECT_UNSATISFIABLE"
	ErrCodeInvalidScene        Code = "INVALID_SCENE"

	// Lookup errors
	ErrCodeNodeNotFound Code = "NODE_NOT_FOUND"

	// Layout lifecycle errors
	ErrCodeLayoutInProgress Code = "LAYOUT_IN_PROGRESS"

	// Rendering and measurement errors
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeFontNotFound  Code = "FONT_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// IsConfiguration reports whether err is a scene configuration error,
// i.e. one that indicates broken scene input rather than a runtime failure.
func IsConfiguration(err error) bool {
	switch GetCode(err) {
	case ErrCodeDuplicateID, ErrCodeMissingAnchor, ErrCodeNegativeExtent,
		ErrCodeAspectUnsatisfiable, ErrCodeInvalidScene:
		return true
	}
	return false
}
