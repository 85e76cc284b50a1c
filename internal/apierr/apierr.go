// Package apierr defines the error taxonomy surfaced by the API. Every
// operation-level failure is normalized to one of these kinds before it
// reaches the response envelope.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API error.
type Kind int

const (
	KindValidation     Kind = iota // bad or missing input
	KindConflict                   // duplicate identity
	KindNotFound                   // no matching record
	KindAuthentication             // bad credential or token
	KindUpload                     // media transfer failed
	KindInternal                   // unexpected store/token failure
)

// Error is an API-level error with an HTTP status and a caller-safe message.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details []string
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

// Validation returns a 400-class input error.
func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message, Details: details}
}

// Conflict returns a 409-class duplicate-identity error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Message: message}
}

// NotFound returns a 404-class error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

// Authentication returns a 401-class error. The wrapped cause is kept for
// logging but never surfaced to the caller.
func Authentication(message string, cause ...error) *Error {
	e := &Error{Kind: KindAuthentication, Status: http.StatusUnauthorized, Message: message}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

// Upload returns a 400-class media transfer error.
func Upload(message string, cause ...error) *Error {
	e := &Error{Kind: KindUpload, Status: http.StatusBadRequest, Message: message}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

// Internal wraps an unexpected failure as a 500-class error.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: message, Err: cause}
}

// From normalizes an arbitrary error into an *Error. Errors already in the
// taxonomy pass through unchanged, anything else becomes Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("something went wrong", err)
}
