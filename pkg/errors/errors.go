package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Dependency errors
	ErrNoManagers    ErrorCode = "NO_MANAGERS"
	ErrDepsMissing   ErrorCode = "DEPS_MISSING"
	ErrInstallFailed ErrorCode = "INSTALL_FAILED"

	// Command execution errors
	ErrCommandFailed ErrorCode = "COMMAND_FAILED"
	ErrUserAbort     ErrorCode = "USER_ABORT"

	// Remote source errors
	ErrFetchFailed ErrorCode = "FETCH_FAILED"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileCopy   ErrorCode = "FILE_COPY"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// DeezError represents a structured error with code and details
type DeezError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DeezError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DeezError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DeezError) Is(target error) bool {
	var targetErr *DeezError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DeezError with the given code and message
func New(code ErrorCode, message string) *DeezError {
	return &DeezError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DeezError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DeezError {
	return &DeezError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DeezError
func Wrap(err error, code ErrorCode, message string) *DeezError {
	if err == nil {
		return nil
	}
	return &DeezError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DeezError {
	if err == nil {
		return nil
	}
	return &DeezError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DeezError) WithDetail(key string, value interface{}) *DeezError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var deezErr *DeezError
	if errors.As(err, &deezErr) {
		return deezErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DeezError
func GetErrorCode(err error) ErrorCode {
	var deezErr *DeezError
	if errors.As(err, &deezErr) {
		return deezErr.Code
	}
	return ErrUnknown
}
