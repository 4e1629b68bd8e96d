package domain

import (
	"errors"
	"fmt"
)

// Code classifies every failure the API can report.
type Code string

const (
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeInvalidDocument  Code = "INVALID_DOCUMENT"
	CodeUnknownOperation Code = "UNKNOWN_OPERATION"
	CodeNotFound         Code = "NOT_FOUND"
	CodeStoreError       Code = "STORE_ERROR"
)

// Error is a classified failure. Message is what the client sees.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so sentinels such as
// ErrNotFound work with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrUnauthenticated  = &Error{Code: CodeUnauthenticated, Message: "unauthenticated"}
	ErrUnauthorized     = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden        = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrInvalidDocument  = &Error{Code: CodeInvalidDocument, Message: "invalid document"}
	ErrUnknownOperation = &Error{Code: CodeUnknownOperation, Message: "unknown operation"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrStore            = &Error{Code: CodeStoreError, Message: "store error"}
)

func newError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(format string, args ...interface{}) error {
	return newError(CodeUnauthenticated, format, args...)
}

func Unauthorized(format string, args ...interface{}) error {
	return newError(CodeUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return newError(CodeForbidden, format, args...)
}

func InvalidDocument(format string, args ...interface{}) error {
	return newError(CodeInvalidDocument, format, args...)
}

func UnknownOperation(format string, args ...interface{}) error {
	return newError(CodeUnknownOperation, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newError(CodeNotFound, format, args...)
}

// StoreError wraps a data-access fault, keeping the driver message verbatim.
func StoreError(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Code: CodeStoreError, Message: err.Error(), Err: err}
}

// CodeOf returns the code of the first *Error in err's chain.
// Unclassified errors are store errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeStoreError
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
