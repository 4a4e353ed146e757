package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInternal          = errors.New("internal server error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrConflict          = errors.New("resource already exists")
)

// statuses is checked in order, the first sentinel found in the chain wins.
var statuses = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrRateLimitExceeded, http.StatusTooManyRequests},
	{ErrConflict, http.StatusConflict},
}

// AppError pins an HTTP status and a message meant for the visitor onto an
// underlying error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func New(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// MapErrorToStatus picks the HTTP status for err. An explicit AppError code
// takes precedence over the sentinels it wraps.
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// Message returns the visitor-facing message carried by an AppError in the
// chain, or "" when there is none.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}

// FieldError is a business rule failure tied to one form field, such as an
// email address that is already taken.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func NewFieldError(field, message string, err error) *FieldError {
	return &FieldError{Field: field, Message: message, Err: err}
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	ok := errors.As(err, &fe)
	return fe, ok
}
