package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for reminder operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid user input, such as an
	// unknown timezone name or a trigger time in the past.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates the requested reminder does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates a conflicting reminder already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeDispatchFailed indicates a notification could not be delivered.
	ErrCodeDispatchFailed ErrorCode = "DISPATCH_FAILED"
)

// BotError represents a structured error for reminder operations.
// Errors with code INVALID_ARGUMENT carry a message suitable for
// showing to the user verbatim.
type BotError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *BotError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the message meant for the end user.
func (e *BotError) UserMessage() string {
	return e.Message
}

// WithContext adds context to the error.
func (e *BotError) WithContext(key string, value interface{}) *BotError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetCode returns the error code.
func (e *BotError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *BotError {
	return &BotError{Code: ErrCodeInvalidArgument, Message: msg}
}

// InvalidArgumentf creates an invalid argument error with a formatted message.
func InvalidArgumentf(format string, args ...interface{}) *BotError {
	return &BotError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error for a reminder.
func NotFound(id string) *BotError {
	return &BotError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("reminder not found: %s", id),
	}
}

// AlreadyExists creates an already exists error for a reminder.
func AlreadyExists(id string) *BotError {
	return &BotError{
		Code:    ErrCodeAlreadyExists,
		Message: fmt.Sprintf("reminder already exists: %s", id),
	}
}

// DispatchFailed creates a dispatch failed error.
func DispatchFailed(msg string, cause error) *BotError {
	return &BotError{Code: ErrCodeDispatchFailed, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *BotError {
	return &BotError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if botErr, ok := err.(*BotError); ok {
		return botErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a BotError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if botErr, ok := err.(*BotError); ok {
		return botErr.Code
	}
	return defaultCode
}
