package utils

import "errors"

// ErrorKind classifies business failures so the HTTP adapter can pick a
// status without string-matching messages.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "Validation"
	ErrorKindNotFound   ErrorKind = "NotFound"
	ErrorKindConflict   ErrorKind = "Conflict"
	ErrorKindInternal   ErrorKind = "Internal"
)

// AppError is the one error type business operations return. Validation,
// NotFound and Conflict messages are safe to show verbatim; Internal wraps
// the underlying cause, which must be logged but never surfaced.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) error {
	return &AppError{Kind: ErrorKindValidation, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &AppError{Kind: ErrorKindNotFound, Message: msg}
}

func NewConflictError(msg string) error {
	return &AppError{Kind: ErrorKindConflict, Message: msg}
}

func NewInternalError(msg string, cause error) error {
	return &AppError{Kind: ErrorKindInternal, Message: msg, Err: cause}
}

// KindOf reports the classification of err; anything untyped counts as Internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrorKindInternal
}

// ErrorRecordNotFound is the shared sentinel for single-record lookups.
var ErrorRecordNotFound = NewNotFoundError("record not found")
