package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// AppError is a failure raised by dagpipe. Code is stable and machine
// readable; Message is for people. Sentinels travel as Cause.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

// New returns an AppError with code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Error formats as "CODE: message", followed by ": cause" when set.
func (e *AppError) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets Cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into e and returns e.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

// NotFound reports a missing definition, pipeline or file. An empty name
// leaves it out of the message.
func NotFound(resource, name string) *AppError {
	if name == "" {
		return Newf(ErrCodeNotFound, "%s not found", resource).WithDetail("resource", resource)
	}
	return Newf(ErrCodeNotFound, "%s %q not found", resource, name).
		WithDetails(map[string]any{"resource": resource, "name": name})
}

// Validation reports user-supplied data that failed a check.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// HasCode reports whether err's chain holds an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
