package xmltree

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes document errors.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates a missing or malformed required input.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeMissingStructure indicates an expected element is absent from the input document.
	ErrCodeMissingStructure ErrorCode = "MISSING_STRUCTURE"

	// ErrCodeMalformed indicates the input could not be parsed as a document.
	ErrCodeMalformed ErrorCode = "MALFORMED_DOCUMENT"
)

// Error is returned by every operation in this package and by the editors
// built on it.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the offending argument or element, if any.
	Field string

	// Err is the underlying cause (parse errors).
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidArgument creates an INVALID_ARGUMENT error for the named field.
func InvalidArgument(field, message string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: message, Field: field}
}

// MissingStructure creates a MISSING_STRUCTURE error for the named element.
func MissingStructure(element string) *Error {
	return &Error{
		Code:    ErrCodeMissingStructure,
		Message: fmt.Sprintf("expected element %q was not found", element),
		Field:   element,
	}
}

func malformed(message string, err error) *Error {
	return &Error{Code: ErrCodeMalformed, Message: message, Err: err}
}

// IsInvalidArgument reports whether err is an INVALID_ARGUMENT error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	return hasCode(err, ErrCodeInvalidArgument)
}

// IsMissingStructure reports whether err is a MISSING_STRUCTURE error.
func IsMissingStructure(err error) bool {
	return hasCode(err, ErrCodeMissingStructure)
}

// IsMalformed reports whether err is a MALFORMED_DOCUMENT error.
func IsMalformed(err error) bool {
	return hasCode(err, ErrCodeMalformed)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
