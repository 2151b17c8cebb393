package errors

import (
	"errors"
	"fmt"
)

// Re-export the standard library helpers so callers only import one errors package.
var (
	New    = errors.New
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
)

// Error extends the basic error interface with a machine-readable code.
type Error interface {
	error
	Code() string
	Unwrap() error
}

// AppError is the default Error implementation.
type AppError struct {
	code    string
	message string
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.message, e.err.Error())
	}
	return e.message
}

func (e *AppError) Code() string {
	return e.code
}

func (e *AppError) Unwrap() error {
	return e.err
}

// NewAppError creates a new application error with the given code.
func NewAppError(code string, message string, err error) *AppError {
	return &AppError{
		code:    code,
		message: message,
		err:     err,
	}
}

// Wrap wraps an existing error, preserving its code if it already is an AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return NewAppError(appErr.Code(), message, err)
	}

	return NewAppError(ErrInternal, message, err)
}

// CodeOf returns the code of err, or ErrInternal for plain errors.
func CodeOf(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code()
	}
	return ErrInternal
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
