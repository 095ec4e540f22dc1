// Package errors provides structured error types for the kidivis application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the review server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes map one-to-one onto the failure modes of the diff pipeline:
// extraction from a version source, sheet-graph scanning, SVG composition,
// and external renderer invocation.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeRefNotFound, "ref %q has no %s", ref, path)
//	if errors.Is(err, errors.ErrCodeRefNotFound) {
//	    // Map to a 404 at the server boundary
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeExtraction, origErr, "copy %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different failure categories.
const (
	// Version source extraction errors
	ErrCodeExtraction           Code = "EXTRACTION_FAILED"
	ErrCodeRefNotFound          Code = "REF_NOT_FOUND"
	ErrCodeArchiveEntryNotFound Code = "ARCHIVE_ENTRY_NOT_FOUND"

	// Design file parsing errors
	ErrCodeStructuralParse Code = "STRUCTURAL_PARSE"

	// SVG composition errors
	ErrCodeMalformedDocument Code = "MALFORMED_DOCUMENT"

	// External renderer errors
	ErrCodeRenderer Code = "RENDERER_FAILED"

	// Project discovery errors
	ErrCodeProjectNotFound Code = "PROJECT_NOT_FOUND"

	// Generic errors
	ErrCodeNotFound Code = "NOT_FOUND"
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

// NotFound reports whether err should surface as "not found" at the
// server boundary rather than as an internal failure.
func NotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeRefNotFound, ErrCodeArchiveEntryNotFound, ErrCodeNotFound, ErrCodeProjectNotFound:
		return true
	}
	return false
}
