package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ScaffoldError defines the base interface for all scaffold engine errors
type ScaffoldError interface {
	error
	ErrorCode() ErrorCode
	Location() MemberLocation
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the type of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// ConfigurationErrorCode covers missing or malformed synthesis input:
	// no identifier member, no display name, missing behavior spec, or an
	// invalid declaring-type identity token.
	ConfigurationErrorCode

	// ContractMismatchErrorCode is raised when a user-declared member collides
	// by name and signature with a generated one but violates its return contract.
	ContractMismatchErrorCode

	// UnsupportedVariantErrorCode is an internal invariant violation: a rebuild
	// request targeted a structure variant outside the two supported kinds.
	UnsupportedVariantErrorCode

	// SnapshotErrorCode covers malformed generation snapshot input.
	SnapshotErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ConfigurationErrorCode:
		return "ConfigurationError"
	case ContractMismatchErrorCode:
		return "ContractMismatchError"
	case UnsupportedVariantErrorCode:
		return "UnsupportedVariantError"
	case SnapshotErrorCode:
		return "SnapshotError"
	default:
		return "UnknownError"
	}
}

// MemberLocation identifies where inside a generation an error occurred:
// the declaring-type identity token plus, when known, the offending member.
type MemberLocation struct {
	Identity string // declaring-type identity token
	Member   string // member name (with signature for methods), empty for type-level errors
}

// String returns a formatted string representation of the location
func (l MemberLocation) String() string {
	if l.Identity == "" {
		return "unknown location"
	}
	if l.Member == "" {
		return l.Identity
	}
	return fmt.Sprintf("%s#%s", l.Identity, l.Member)
}

// IsEmpty returns true if the location has no useful information
func (l MemberLocation) IsEmpty() bool {
	return l.Identity == ""
}

// BaseError provides a common implementation of the ScaffoldError interface
type BaseError struct {
	Code        ErrorCode              // type of error
	Message     string                 // error message
	Loc         MemberLocation         // where the error occurred
	Cause       error                  // underlying error cause
	ContextData map[string]interface{} // additional context information
	Hints       []string               // helpful suggestions for fixing the error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Loc.IsEmpty() {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Loc.String(), e.Message)
}

// ErrorCode returns the error code
func (e *BaseError) ErrorCode() ErrorCode {
	return e.Code
}

// Location returns where the error occurred
func (e *BaseError) Location() MemberLocation {
	return e.Loc
}

// Context returns the error context data
func (e *BaseError) Context() map[string]interface{} {
	if e.ContextData == nil {
		return make(map[string]interface{})
	}
	return e.ContextData
}

// Suggestions returns helpful suggestions for fixing the error
func (e *BaseError) Suggestions() []string {
	return e.Hints
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithLocation adds location information to the error
func (e *BaseError) WithLocation(loc MemberLocation) *BaseError {
	e.Loc = loc
	return e
}

// WithCause adds an underlying error cause
func (e *BaseError) WithCause(cause error) *BaseError {
	e.Cause = cause
	return e
}

// WithContext adds context data to the error
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]interface{})
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestion adds a helpful suggestion for fixing the error
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// New creates a new BaseError with the specified code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Hints:   make([]string, 0),
	}
}

// Newf creates a new BaseError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new error that wraps another error
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Hints:   make([]string, 0),
	}
}

// Wrapf creates a new error that wraps another error with formatted message
func Wrapf(code ErrorCode, cause error, format string, args ...interface{}) *BaseError {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var se ScaffoldError
	if stderrors.As(err, &se) {
		return se.ErrorCode() == code
	}
	return false
}

// MultipleErrors collects per-type failures from a single generation pass.
// A failure for one type never blocks processing of its siblings, so callers
// accumulate errors here and report them together.
type MultipleErrors struct {
	Errors []ScaffoldError
}

// Error implements the error interface
func (e *MultipleErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return fmt.Sprintf("multiple errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Add adds an error to the collection
func (e *MultipleErrors) Add(err ScaffoldError) {
	e.Errors = append(e.Errors, err)
}

// IsEmpty returns true if there are no errors
func (e *MultipleErrors) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Count returns the number of errors
func (e *MultipleErrors) Count() int {
	return len(e.Errors)
}

// GetByCode returns all errors of a specific type
func (e *MultipleErrors) GetByCode(code ErrorCode) []ScaffoldError {
	var result []ScaffoldError
	for _, err := range e.Errors {
		if err.ErrorCode() == code {
			result = append(result, err)
		}
	}
	return result
}

// Unwrap returns the first underlying error for error inspection
func (e *MultipleErrors) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0]
}
