package render

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes render errors.
type ErrorCode string

const (
	// ErrCodeCircularDependency indicates variables that depend on each other.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"

	// ErrCodeMissingVariable indicates a reference to an undefined variable.
	ErrCodeMissingVariable ErrorCode = "MISSING_VARIABLE"

	// ErrCodeUnknownExtension indicates a variable type with no extension.
	ErrCodeUnknownExtension ErrorCode = "UNKNOWN_EXTENSION"

	// ErrCodeExtensionFailed indicates an extension reported an error.
	ErrCodeExtensionFailed ErrorCode = "EXTENSION_FAILED"

	// ErrCodeAborted indicates the user cancelled an interactive extension.
	ErrCodeAborted ErrorCode = "ABORTED"
)

// Error is a render failure. Node and Dependency are set for cycles,
// Variable for every variable-scoped failure.
type Error struct {
	Code       ErrorCode
	Message    string
	Node       string
	Dependency string
	Variable   string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewCircularDependencyError reports that node depends on dependency, which
// is still being resolved.
func NewCircularDependencyError(node, dependency string) *Error {
	return &Error{
		Code:       ErrCodeCircularDependency,
		Message:    fmt.Sprintf("variable %q and %q depend on each other", node, dependency),
		Node:       node,
		Dependency: dependency,
	}
}

// NewMissingVariableError reports a reference to an undefined variable.
func NewMissingVariableError(name string) *Error {
	return &Error{
		Code:     ErrCodeMissingVariable,
		Message:  fmt.Sprintf("variable %q is not defined", name),
		Variable: name,
	}
}

func newUnknownExtensionError(variable, typ string) *Error {
	return &Error{
		Code:     ErrCodeUnknownExtension,
		Message:  fmt.Sprintf("variable %q has unknown type %q", variable, typ),
		Variable: variable,
	}
}

func newExtensionFailedError(variable string, err error) *Error {
	return &Error{
		Code:     ErrCodeExtensionFailed,
		Message:  fmt.Sprintf("evaluating variable %q", variable),
		Variable: variable,
		Err:      err,
	}
}

func newAbortedError(variable string) *Error {
	return &Error{
		Code:     ErrCodeAborted,
		Message:  fmt.Sprintf("variable %q was aborted", variable),
		Variable: variable,
	}
}

func hasCode(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsCircularDependency reports whether err is a circular-dependency error.
func IsCircularDependency(err error) bool { return hasCode(err, ErrCodeCircularDependency) }

// IsMissingVariable reports whether err is a missing-variable error.
func IsMissingVariable(err error) bool { return hasCode(err, ErrCodeMissingVariable) }

// IsAborted reports whether err is a user abort.
func IsAborted(err error) bool { return hasCode(err, ErrCodeAborted) }
