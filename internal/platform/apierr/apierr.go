package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation   = "validation"
	CodePermission   = "permission"
	CodeNotFound     = "not_found"
	CodeLastOwner    = "last_owner"
	CodeAuth         = "auth"
	CodeDegradedMode = "degraded_mode"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func Permission(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, CodePermission, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func LastOwner(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeLastOwner, fmt.Errorf(format, args...))
}

func Auth(format string, args ...interface{}) *Error {
	return New(http.StatusUnauthorized, CodeAuth, fmt.Errorf(format, args...))
}

func DegradedMode(format string, args ...interface{}) *Error {
	return New(http.StatusLocked, CodeDegradedMode, fmt.Errorf(format, args...))
}

// IsCode reports whether err carries the given machine code anywhere in its chain.
func IsCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// StatusOf returns the HTTP status for err, defaulting to 500 for untyped errors.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf returns the machine code for err, or "" for untyped errors.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
