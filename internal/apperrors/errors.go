package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// KindValidation covers malformed or missing client input.
	KindValidation Kind = iota
	// KindConflict covers unique-key violations, e.g. a duplicate email.
	KindConflict
	// KindAuthentication covers bad credentials. The message never
	// reveals whether the email exists.
	KindAuthentication
	// KindDependency covers database failures. The client sees a generic
	// message; the wrapped cause goes to the log only.
	KindDependency
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Authenticationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthentication, Message: fmt.Sprintf(format, args...)}
}

func Dependency(message string, err error) *Error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

// Status maps an error to its HTTP status code. Unclassified errors are
// treated as dependency failures.
func Status(err error) int {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe to show the caller. Dependency
// errors hide their cause behind a generic message.
func ClientMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind == KindDependency {
		return "Internal server error"
	}
	return appErr.Message
}
