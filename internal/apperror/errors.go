// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details.
package apperror

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Configuration
	CodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	CodeConfigInvalid  ErrorCode = "CONFIG_INVALID"
	CodeConfigMissing  ErrorCode = "CONFIG_MISSING_FIELD"

	// Network validation
	CodeInvalidNetwork  ErrorCode = "INVALID_NETWORK"
	CodeSelfLoop        ErrorCode = "SELF_LOOP"
	CodeNegativeDelay   ErrorCode = "NEGATIVE_DELAY"
	CodeNegativeBW      ErrorCode = "NEGATIVE_BANDWIDTH"
	CodeUnknownNode     ErrorCode = "UNKNOWN_NODE"
	CodeSourceEqualSink ErrorCode = "SOURCE_EQUALS_SINK"

	// Admission-control
	CodeNoPath     ErrorCode = "NO_PATH"
	CodeInfeasible ErrorCode = "INFEASIBLE"

	// Forwarding-fabric
	CodeMappingMiss       ErrorCode = "MAPPING_MISS"
	CodeForwardingDeadEnd ErrorCode = "FORWARDING_DEAD_END"

	// Simulation lifecycle
	CodeCompletionTimeout ErrorCode = "COMPLETION_TIMEOUT"

	// General
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeIterationLimit  ErrorCode = "ITERATION_LIMIT"
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning indicates a non-critical issue that can be ignored or automatically resolved.
	SeverityWarning Severity = iota
	// SeverityError indicates a standard error that requires attention.
	SeverityError
	// SeverityCritical indicates a severe error that might require immediate human intervention.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a severity level.
type Error struct {
	Code     ErrorCode
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, allowing for error chain introspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new application error with the given code and message.
// The default severity is SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityError}
}

// NewWithField creates a new application error with a field, for
// pinpointing a single bad config or flow attribute.
func NewWithField(code ErrorCode, message, field string) *Error {
	return &Error{Code: code, Message: message, Field: field, Details: make(map[string]any), Severity: SeverityError}
}

// NewWarning creates a new application error with SeverityWarning, used
// for per-flow admission failures and per-packet drops that are never
// fatal to the run.
func NewWarning(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityWarning}
}

// NewCritical creates a new application error with SeverityCritical, for
// failures that should abort the run (e.g. an unparsable config or a
// disconnected network with no admission possible at all).
func NewCritical(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Details: make(map[string]any), Severity: SeverityCritical}
}

// Wrap creates a new application error that wraps an existing error.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Details: make(map[string]any), Severity: SeverityError}
}

// WithDetails adds a key-value pair to the error's details map.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is checks if the given error is an application error with a matching ErrorCode.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error, defaulting to CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsWarning reports whether err is an application error with SeverityWarning.
func IsWarning(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityWarning
	}
	return false
}

// IsCritical reports whether err is an application error with SeverityCritical.
func IsCritical(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityCritical
	}
	return false
}

// ValidationErrors accumulates the results of validating a network or a
// flow set, distinguishing hard errors from warnings so a caller can
// decide whether to abort or proceed.
type ValidationErrors struct {
	Errors   []*Error
	Warnings []*Error
}

// Add appends a new error built from code and message.
func (v *ValidationErrors) Add(code ErrorCode, message string) {
	v.Errors = append(v.Errors, New(code, message))
}

// AddError appends an already-constructed error.
func (v *ValidationErrors) AddError(err *Error) {
	v.Errors = append(v.Errors, err)
}

// AddWarning appends a warning-severity error.
func (v *ValidationErrors) AddWarning(code ErrorCode, message string) {
	v.Warnings = append(v.Warnings, NewWarning(code, message))
}

// AddErrorWithField appends an error tied to a specific field.
func (v *ValidationErrors) AddErrorWithField(code ErrorCode, message, field string) {
	v.Errors = append(v.Errors, NewWithField(code, message, field))
}

// HasErrors reports whether any hard errors were recorded.
func (v *ValidationErrors) HasErrors() bool { return len(v.Errors) > 0 }

// HasWarnings reports whether any warnings were recorded.
func (v *ValidationErrors) HasWarnings() bool { return len(v.Warnings) > 0 }

// IsValid reports whether no hard errors were recorded (warnings are fine).
func (v *ValidationErrors) IsValid() bool { return !v.HasErrors() }

// Merge appends another ValidationErrors' entries into v.
func (v *ValidationErrors) Merge(other *ValidationErrors) {
	if other == nil {
		return
	}
	v.Errors = append(v.Errors, other.Errors...)
	v.Warnings = append(v.Warnings, other.Warnings...)
}

// ErrorMessages returns the message text of each hard error.
func (v *ValidationErrors) ErrorMessages() []string {
	out := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		out[i] = e.Error()
	}
	return out
}

// WarningMessages returns the message text of each warning.
func (v *ValidationErrors) WarningMessages() []string {
	out := make([]string, len(v.Warnings))
	for i, e := range v.Warnings {
		out[i] = e.Error()
	}
	return out
}

// Predefined errors for common scenarios.
var (
	ErrNoPath            = New(CodeNoPath, "no path from source to destination")
	ErrInfeasible        = New(CodeInfeasible, "delay-optimal path exceeds budget")
	ErrCompletionTimeout = New(CodeCompletionTimeout, "not all admitted flows completed before timeout")
	ErrIterationLimit    = New(CodeIterationLimit, "iteration limit exceeded")
	ErrSourceEqualsSink  = New(CodeSourceEqualSink, "source and destination cannot be the same")
)
