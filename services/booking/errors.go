package booking

import (
	"errors"
	"fmt"
)

// ErrorCode classifies booking failures. Handlers map codes to HTTP statuses.
type ErrorCode string

const (
	CodeValidation        ErrorCode = "validation"
	CodeNotFound          ErrorCode = "not_found"
	CodeForbidden         ErrorCode = "forbidden"
	CodeConflict          ErrorCode = "conflict"
	CodeInvalidTransition ErrorCode = "invalid_transition"
	CodeAlreadyCanceled   ErrorCode = "already_canceled"
	CodeTransaction       ErrorCode = "transaction"
	CodeServer            ErrorCode = "server"
)

type BookingError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Message
}

func (e *BookingError) Unwrap() error { return e.Err }

// Is matches any BookingError with the same code, so callers can test against the sentinels below.
func (e *BookingError) Is(target error) bool {
	t, ok := target.(*BookingError)
	return ok && t.Code == e.Code
}

var (
	ErrValidation        = &BookingError{Code: CodeValidation, Message: "invalid request"}
	ErrNotFound          = &BookingError{Code: CodeNotFound, Message: "not found"}
	ErrForbidden         = &BookingError{Code: CodeForbidden, Message: "forbidden"}
	ErrConflict          = &BookingError{Code: CodeConflict, Message: "conflict"}
	ErrInvalidTransition = &BookingError{Code: CodeInvalidTransition, Message: "invalid transition"}
	ErrAlreadyCanceled   = &BookingError{Code: CodeAlreadyCanceled, Message: "booking already canceled"}
	ErrTransaction       = &BookingError{Code: CodeTransaction, Message: "transaction failed"}
	ErrServer            = &BookingError{Code: CodeServer, Message: "internal server error"}
)

func newError(code ErrorCode, format string, args ...interface{}) *BookingError {
	return &BookingError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code ErrorCode, msg string, err error) *BookingError {
	return &BookingError{Code: code, Message: fmt.Sprintf("%s: %v", msg, err), Err: err}
}

// CodeOf returns the code carried by err, or CodeServer for anything unclassified.
func CodeOf(err error) ErrorCode {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeServer
}
