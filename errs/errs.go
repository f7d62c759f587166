// Package errs defines the error taxonomy shared by every package of the module.
//
// Errors carry a Code that describes the category of failure independent of the
// operation that produced it. Callers match categories with errors.Is against
// the sentinels ErrRange, ErrType and ErrNotImplemented.
package errs

import (
	"errors"
	"fmt"
)

// Code is an error category.
type Code string

const (
	// CodeRange reports a value outside its representable or valid range: instant
	// overflow, out-of-range fields under the reject overflow policy, or a
	// nonexistent/ambiguous wall-clock time under reject disambiguation.
	CodeRange Code = "range_error"

	// CodeType reports a wrong capability or variant for an operation, such as
	// adding calendar units to an Instant or comparing rule-based zones.
	CodeType Code = "type_error"

	// CodeNotImplemented reports a deliberate, documented gap.
	CodeNotImplemented Code = "not_implemented"
)

var (
	ErrRange          = &Error{Code: CodeRange}
	ErrType           = &Error{Code: CodeType}
	ErrNotImplemented = &Error{Code: CodeNotImplemented}
)

// Error is a categorized error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Range returns a range error with a formatted message.
func Range(format string, args ...any) error {
	return &Error{Code: CodeRange, Message: fmt.Sprintf(format, args...)}
}

// Type returns a type error with a formatted message.
func Type(format string, args ...any) error {
	return &Error{Code: CodeType, Message: fmt.Sprintf(format, args...)}
}

// NotImplemented returns a not-implemented error with a formatted message.
func NotImplemented(format string, args ...any) error {
	return &Error{Code: CodeNotImplemented, Message: fmt.Sprintf(format, args...)}
}

// Wrap categorizes err. If err already carries a code, that code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether err is categorized with code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
