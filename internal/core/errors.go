// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeBadRequest     = "BAD_REQUEST"
	CodeInternal       = "INTERNAL_ERROR"
	CodeRateLimited    = "RATE_LIMITED"
	internalErrMessage = "an internal error occurred"
)

// AppError is an error safe to render to clients. Err holds the
// underlying cause for logging and errors.Is matching; it is never
// written to a response.
type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: status,
		Err:        err,
	}
}

func NotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound, ErrNotFound)
}

func ValidationError(message string) *AppError {
	return NewAppError(
		CodeValidation,
		message,
		http.StatusBadRequest,
		ErrInvalidInput,
	)
}

func BadRequestError(message string) *AppError {
	return NewAppError(
		CodeBadRequest,
		message,
		http.StatusBadRequest,
		ErrInvalidInput,
	)
}

// InternalError hides cause behind a generic message.
func InternalError(cause error) *AppError {
	if cause == nil {
		cause = ErrInternal
	}
	return NewAppError(
		CodeInternal,
		internalErrMessage,
		http.StatusInternalServerError,
		cause,
	)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
