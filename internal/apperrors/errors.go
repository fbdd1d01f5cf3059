// Package apperrors provides coded domain errors shared by repositories,
// validators and HTTP handlers.
//
//	if errors.Is(err, apperrors.ErrNotFound) {
//	    ...
//	}
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeValidation   Code = "VALIDATION"
	CodeForbidden    Code = "FORBIDDEN"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInternal     Code = "INTERNAL"
)

// HTTPStatus maps the code to a response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// FieldErrors maps a payload field to every message raised against it.
type FieldErrors map[string][]string

// Add appends msg under field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Empty reports whether no error was recorded.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Error is a domain error with a code, message and optional field details.
type Error struct {
	Code    Code
	Message string
	Fields  FieldErrors
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the response status for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Fields: e.Fields, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation error"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal error"}
)

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Validation builds a validation error from collected field errors.
func Validation(fields FieldErrors) *Error {
	return &Error{Code: CodeValidation, Message: "validation error", Fields: fields}
}

// FieldError builds a validation error for a single field.
func FieldError(field, msg string) *Error {
	return Validation(FieldErrors{field: {msg}})
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
