// File: error.go
// Title: Core Error Implementation
// Description: Implements the structured Error type carried by every cstkit
//              failure: message, cause, code, severity, details and the
//              operation that failed. Compatible with errors.Is/As.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial implementation derived from the platform error type

package error

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
)

// Error represents a structured error with context, codes, and metadata
type Error struct {
	message   string
	cause     error
	code      Code
	severity  Severity
	timestamp time.Time
	details   map[string]interface{}
	operation string
}

// New creates a new Error with the given message and CodeUnknown
func New(message string) *Error {
	return &Error{
		message:   message,
		code:      CodeUnknown,
		severity:  SeverityMedium,
		timestamp: time.Now(),
		details:   make(map[string]interface{}),
	}
}

// Newf creates a new Error with the given code and formatted message
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...)).WithCode(code)
}

// Wrap wraps an existing error with additional context. Wrapping a nil error returns nil.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := &Error{
		message:   message,
		cause:     err,
		code:      CodeUnknown,
		severity:  SeverityMedium,
		timestamp: time.Now(),
		details:   make(map[string]interface{}),
	}

	var inner *Error
	if errors.As(err, &inner) {
		wrapped.code = inner.code
		wrapped.severity = inner.severity
		for k, v := range inner.details {
			wrapped.details[k] = v
		}
	}
	return wrapped
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Error implements the standard error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause.Error())
	}
	return e.message
}

// Unwrap returns the underlying cause for error unwrapping
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports a match when target is an *Error carrying the same non-unknown code,
// so errors.Is(err, ckerror.New("").WithCode(CodeParse)) works across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code != CodeUnknown && t.code == e.code
}

// WithCode sets the code and derives the matching default severity
func (e *Error) WithCode(code Code) *Error {
	e.code = code
	e.severity = SeverityFromCode(code)
	return e
}

// WithSeverity overrides the severity level
func (e *Error) WithSeverity(severity Severity) *Error {
	e.severity = severity
	return e
}

// WithDetail adds a single detail
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.details[key] = value
	return e
}

// WithDetails adds several details
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	for k, v := range details {
		e.details[k] = v
	}
	return e
}

// WithOperation records the operation that failed
func (e *Error) WithOperation(operation string) *Error {
	e.operation = operation
	return e
}

func (e *Error) Code() Code { return e.code }
func (e *Error) Severity() Severity { return e.severity }
func (e *Error) Timestamp() time.Time { return e.timestamp }
func (e *Error) Operation() string { return e.operation }
func (e *Error) Message() string { return e.message }
func (e *Error) Cause() error { return e.cause }

// Details returns a copy of the details map
func (e *Error) Details() map[string]interface{} {
	out := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

// String returns a detailed multi-line representation of the error
func (e *Error) String() string {
	parts := []string{
		fmt.Sprintf("Error: %s", e.message),
		fmt.Sprintf("Code: %s", e.code),
		fmt.Sprintf("Severity: %s", e.severity),
	}
	if e.operation != "" {
		parts = append(parts, fmt.Sprintf("Operation: %s", e.operation))
	}
	if len(e.details) > 0 {
		keys := make([]string, 0, len(e.details))
		for k := range e.details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		detailStrs := make([]string, 0, len(keys))
		for _, k := range keys {
			detailStrs = append(detailStrs, fmt.Sprintf("%s=%v", k, e.details[k]))
		}
		parts = append(parts, fmt.Sprintf("Details: {%s}", strings.Join(detailStrs, ", ")))
	}
	if e.cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %s", e.cause.Error()))
	}
	return strings.Join(parts, "\n")
}

// MarshalJSON renders the error for structured logs and JSON CLI output
func (e *Error) MarshalJSON() ([]byte, error) {
	details := make(map[string]string, len(e.details))
	for k, v := range e.details {
		details[k] = fmt.Sprint(v)
	}
	data := map[string]interface{}{
		"message":   e.message,
		"code":      string(e.code),
		"category":  e.code.Category(),
		"severity":  e.severity.String(),
		"timestamp": e.timestamp.Format(time.RFC3339),
	}
	if len(details) > 0 {
		data["details"] = details
	}
	if e.operation != "" {
		data["operation"] = e.operation
	}
	if e.cause != nil {
		data["cause"] = e.cause.Error()
	}
	return json.Marshal(data, json.Deterministic(true))
}

// AsError finds the first *Error in err's chain
func AsError(err error) (*Error, bool) {
	var ckErr *Error
	if errors.As(err, &ckErr) {
		return ckErr, true
	}
	return nil, false
}

// HasCode checks if any error in the chain carries the given code
func HasCode(err error, code Code) bool {
	for err != nil {
		if ckErr, ok := err.(*Error); ok && ckErr.code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode returns the code of the first *Error in the chain, or CodeUnknown
func GetCode(err error) Code {
	if ckErr, ok := AsError(err); ok {
		return ckErr.code
	}
	return CodeUnknown
}

// GetSeverity returns the severity of the first *Error in the chain, or SeverityMedium
func GetSeverity(err error) Severity {
	if ckErr, ok := AsError(err); ok {
		return ckErr.severity
	}
	return SeverityMedium
}
