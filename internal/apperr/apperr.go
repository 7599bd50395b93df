package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidCredentials  Code = "INVALID_CREDENTIALS"
	CodeTokenExpired        Code = "TOKEN_EXPIRED"
	CodeTokenInvalid        Code = "TOKEN_INVALID"
	CodeNotFound            Code = "NOT_FOUND"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
)

// Error carries a stable code, a client-safe message and the HTTP status
// the transport should answer with. Err is never shown to clients.
type Error struct {
	Code    Code
	Message string
	Status  int
	Err     error
}

var (
	ErrInvalidCredentials  = &Error{Code: CodeInvalidCredentials, Message: "Invalid username or password", Status: http.StatusUnauthorized}
	ErrTokenExpired        = &Error{Code: CodeTokenExpired, Message: "Token has expired", Status: http.StatusUnauthorized}
	ErrTokenInvalid        = &Error{Code: CodeTokenInvalid, Message: "Could not validate credentials", Status: http.StatusUnauthorized}
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "Not found", Status: http.StatusNotFound}
	ErrValidation          = &Error{Code: CodeValidation, Message: "Invalid request", Status: http.StatusBadRequest}
	ErrUpstreamUnavailable = &Error{Code: CodeUpstreamUnavailable, Message: "Service temporarily unavailable", Status: http.StatusServiceUnavailable}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches by code so wrapped copies still satisfy errors.Is(err, ErrX).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

func (e *Error) WithError(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

func NotFound(msg string) *Error { return ErrNotFound.WithMessage(msg) }

func Validation(msg string) *Error { return ErrValidation.WithMessage(msg) }

func Upstream(err error) *Error { return ErrUpstreamUnavailable.WithError(err) }

// From returns err as *Error, treating anything unknown as an upstream fault.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Upstream(err)
}
