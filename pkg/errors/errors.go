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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Command line errors
	ErrUsage ErrorCode = "USAGE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Recipe errors
	ErrStandardRecipe ErrorCode = "STANDARD_RECIPE"
	ErrRecipeLoad     ErrorCode = "RECIPE_LOAD"
	ErrRecipeNotFound ErrorCode = "RECIPE_NOT_FOUND"
	ErrRecipeInvalid  ErrorCode = "RECIPE_INVALID"

	// Action errors
	ErrActionNotFound ErrorCode = "ACTION_NOT_FOUND"
	ErrActionFailed   ErrorCode = "ACTION_FAILED"

	// Credential errors
	ErrCredential  ErrorCode = "CREDENTIAL"
	ErrInterrupted ErrorCode = "INTERRUPTED"

	// Transport errors
	ErrTransport ErrorCode = "TRANSPORT"
	ErrHostSpec  ErrorCode = "HOST_SPEC"
)

// SwitchTowerError represents a structured error with code and details
type SwitchTowerError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SwitchTowerError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SwitchTowerError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SwitchTowerError) Is(target error) bool {
	var targetErr *SwitchTowerError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SwitchTowerError with the given code and message
func New(code ErrorCode, message string) *SwitchTowerError {
	return &SwitchTowerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SwitchTowerError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SwitchTowerError {
	return &SwitchTowerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SwitchTowerError
func Wrap(err error, code ErrorCode, message string) *SwitchTowerError {
	if err == nil {
		return nil
	}
	return &SwitchTowerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SwitchTowerError {
	if err == nil {
		return nil
	}
	return &SwitchTowerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SwitchTowerError) WithDetail(key string, value interface{}) *SwitchTowerError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var stErr *SwitchTowerError
	if errors.As(err, &stErr) {
		return stErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SwitchTowerError
func GetErrorCode(err error) ErrorCode {
	var stErr *SwitchTowerError
	if errors.As(err, &stErr) {
		return stErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a SwitchTowerError
func GetErrorDetails(err error) map[string]interface{} {
	var stErr *SwitchTowerError
	if errors.As(err, &stErr) {
		return stErr.Details
	}
	return nil
}

// Describe renders an error chain for humans: messages joined by ": ",
// without the bracketed codes.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	stErr, ok := err.(*SwitchTowerError)
	if !ok {
		return err.Error()
	}
	if stErr.Wrapped == nil {
		return stErr.Message
	}
	return stErr.Message + ": " + Describe(stErr.Wrapped)
}

// HasErrorCode reports whether any SwitchTowerError in err's chain carries
// code. IsErrorCode only looks at the outermost one.
func HasErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		if stErr, ok := err.(*SwitchTowerError); ok && stErr.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
