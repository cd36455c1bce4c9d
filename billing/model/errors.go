package model

import (
	"errors"
	"fmt"
)

// ErrCode classifies a billing error so callers can decide whether to
// retry, escalate or treat the condition as benign.
type ErrCode string

const (
	ErrInvalidArgument ErrCode = "invalid_argument"
	ErrNotFound        ErrCode = "not_found"
	ErrConflict        ErrCode = "conflict"
	ErrUnavailable     ErrCode = "unavailable"
	ErrInternal        ErrCode = "internal"

	// ErrReconciliationDrift means a settled transaction could not be
	// matched against the billing engine's records. Fatal for the batch;
	// requires operator review.
	ErrReconciliationDrift ErrCode = "reconciliation_drift"
)

// Error is the coded error returned by the business and domain layers.
type Error struct {
	Code    ErrCode
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// NewError builds a coded error.
func NewError(code ErrCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError builds a coded error with an underlying cause.
func WrapError(code ErrCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the code from an error, or ErrInternal when the error
// is not a coded one.
func CodeOf(err error) ErrCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternal
}
