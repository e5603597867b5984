package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string // Stable error kind (e.g., ALREADY_GENERATED)
	Message    string // User-facing message
	HTTPStatus int
	Err        error // Wrapped cause, never rendered to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinels by identity first and then by code, so a wrapped
// sentinel still satisfies errors.Is against the bare sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e == t {
		return true
	}
	return t.Err == nil && e.Code == t.Code && e.Message == t.Message
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// WithCause returns a copy of the sentinel carrying err as its cause.
func (e *AppError) WithCause(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		HTTPStatus: e.HTTPStatus,
		Err:        err,
	}
}

// As extracts the first *AppError in the chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Storage marks err as a transient storage failure. Errors that already
// carry a domain kind are returned unchanged.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return Wrap(err, CodeStorage, "storage is temporarily unavailable", http.StatusServiceUnavailable)
}

// Computation reports an internal inconsistency with the context needed to
// diagnose it.
func Computation(userID string, month, year int, err error) error {
	return Wrap(
		fmt.Errorf("user %s period %02d/%d: %w", userID, month, year, err),
		CodeComputation,
		fmt.Sprintf("salary computation failed for user %s period %02d/%d", userID, month, year),
		http.StatusInternalServerError,
	)
}
