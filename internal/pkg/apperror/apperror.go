package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError so that outer layers can react to it programmatically.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindIncorrectParameter Kind = "incorrect_parameter"
	KindValidation         Kind = "validation"
	KindUnknownState       Kind = "unknown_state"
	KindMissingArgument    Kind = "missing_argument"
	KindInvalidArgument    Kind = "invalid_argument"
	KindInternal           Kind = "internal"
)

// AppError is a custom error type that includes its kind, an HTTP status code and an optional wrapped error.
type AppError struct {
	Kind    Kind
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError of the given kind. The HTTP status is derived from the kind.
func New(kind Kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    StatusFor(kind),
		Message: message,
	}
}

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...any) *AppError {
	return New(kind, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusFor maps an error kind to the HTTP status the API answers with.
// IncorrectParameter answers 404 like NotFound; clients of the sharing API rely on that.
func StatusFor(kind Kind) int {
	switch kind {
	case KindNotFound, KindIncorrectParameter:
		return http.StatusNotFound
	case KindValidation, KindUnknownState, KindMissingArgument, KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
