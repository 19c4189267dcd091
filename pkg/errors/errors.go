package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an application error.
type ErrorCode string

const (
	CodeValidation          ErrorCode = "VALIDATION"
	CodeSlotTaken           ErrorCode = "SLOT_TAKEN"
	CodeIdentityUnavailable ErrorCode = "IDENTITY_UNAVAILABLE"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	CodeTransient           ErrorCode = "TRANSIENT"
	CodeInternal            ErrorCode = "INTERNAL"
)

// AppError is the error type every layer below the handlers returns.
// Handlers map the code to an HTTP status; nothing above them should
// ever see a raw, unclassified error.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

func NewSlotTaken(date, timeSlot string) *AppError {
	return &AppError{
		Code:    CodeSlotTaken,
		Message: fmt.Sprintf("time slot %s on %s is already booked", timeSlot, date),
	}
}

func NewIdentityUnavailable(err error) *AppError {
	return &AppError{Code: CodeIdentityUnavailable, Message: "could not resolve caller identity", Err: err}
}

func NewNotFound(resource string, err error) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func NewUnauthorized(err error) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: "unauthorized", Err: err}
}

func NewTransient(message string, err error) *AppError {
	return &AppError{Code: CodeTransient, Message: message, Err: err}
}

func NewInternal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal server error", Err: err}
}

// CodeOf extracts the error code, defaulting to CodeInternal for
// anything that escaped classification.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
