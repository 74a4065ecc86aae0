// Package apperr defines the error taxonomy shared by the Data Gateway's
// domain services and the Edge API's error-mapping table, the same way
// handlers.AppError centralized error codes for the teacher's HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	InvalidInput         Code = "INVALID_INPUT"
	InvalidIdFormat      Code = "INVALID_ID_FORMAT"
	NotFound             Code = "NOT_FOUND"
	Conflict             Code = "CONFLICT"
	AuthFailed           Code = "AUTH_FAILED"
	EmptyCart            Code = "EMPTY_CART"
	IllegalTransition    Code = "ILLEGAL_TRANSITION"
	UpstreamUnavailable  Code = "UPSTREAM_UNAVAILABLE"
	Internal             Code = "INTERNAL"
)

// AppError is the one error type every domain service returns. It carries
// a stable Code that survives the msgpack hop from D to E unchanged.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the Code from err, defaulting to Internal when err is not
// (or does not wrap) an *AppError.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return Internal
}

// MessageOf extracts the sanitized message from err, never the underlying
// wrapped error text (which may carry SQL or stack detail).
func MessageOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal error"
}
