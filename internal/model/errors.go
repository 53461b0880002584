package model

import (
	"errors"
	"fmt"
)

// Code classifies a failure.
type Code string

const (
	CodeNotFound            Code = "not_found"
	CodeTruncatedFile       Code = "truncated_file"
	CodeTruncatedPointArray Code = "truncated_point_array"
	CodeCorruptHeader       Code = "corrupt_header"
	CodeIO                  Code = "io_error"
	CodeInvalidArgument     Code = "invalid_argument"
	CodeInvariantViolation  Code = "invariant_violation"
)

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "not found"}
	ErrTruncatedFile       = &Error{Code: CodeTruncatedFile, Message: "truncated file"}
	ErrTruncatedPointArray = &Error{Code: CodeTruncatedPointArray, Message: "truncated point array"}
	ErrCorruptHeader       = &Error{Code: CodeCorruptHeader, Message: "corrupt header"}
	ErrIO                  = &Error{Code: CodeIO, Message: "i/o error"}
	ErrInvalidArgument     = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrInvariantViolation  = &Error{Code: CodeInvariantViolation, Message: "invariant violation"}
)

// Error is a classified database error
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf returns the Code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
