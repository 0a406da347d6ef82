package utilities

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sachin-security/sachin-security-sub000/internal/database"
)

// ErrorKind classifies a failure so handlers can pick a status code deterministically.
type ErrorKind int

const (
	KindUnhandled ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	default:
		return "unhandled"
	}
}

// AppError is the tagged error returned by handlers and helpers.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// ValidationError reports bad client input.
func ValidationError(format string, args ...any) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a lookup by id that matched nothing.
func NotFoundError(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a uniqueness violation.
func ConflictError(format string, args ...any) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// AuthFailure reports a missing, invalid or expired credential.
func AuthFailure(message string) *AppError {
	return &AppError{Kind: KindAuth, Message: message}
}

// Unhandled wraps an unexpected failure from a lower layer.
func Unhandled(err error) *AppError {
	return &AppError{Kind: KindUnhandled, Message: fmt.Sprintf("Internal server error: %s", err.Error()), Err: err}
}

// KindOf returns the kind of err, KindUnhandled when err is not an *AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnhandled
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// FromStore translates document store sentinels into tagged errors.
// notFound and conflict are the messages shown to the caller.
func FromStore(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return &AppError{Kind: KindNotFound, Message: notFound, Err: err}
	case errors.Is(err, database.ErrDuplicate):
		return &AppError{Kind: KindConflict, Message: conflict, Err: err}
	default:
		var appErr *AppError
		if errors.As(err, &appErr) {
			return err
		}
		return Unhandled(err)
	}
}
