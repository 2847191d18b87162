package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across orgflow.
type ErrorCode string

// Input and document error codes
const (
	ErrInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrInvalidDocument ErrorCode = "INVALID_DOCUMENT"
	ErrInvalidConfig   ErrorCode = "INVALID_CONFIG"
)

// Hierarchy resolution error codes
const (
	ErrUnresolvedCycle      ErrorCode = "UNRESOLVED_CYCLE"
	ErrOracleNoop           ErrorCode = "ORACLE_NOOP"
	ErrOracleUnknownManager ErrorCode = "ORACLE_UNKNOWN_MANAGER"
	ErrOracleFailed         ErrorCode = "ORACLE_FAILED"
)

// Upstream error codes
const (
	ErrUpstreamError ErrorCode = "UPSTREAM_ERROR"
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with code, message, and cause.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error chain.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsErrorCode reports whether any error in the chain carries code.
func IsErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
