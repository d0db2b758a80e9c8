package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness. Details carries
// structured context that must survive into the serialized response, such as
// the conflict list of a failed generation run.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// WithDetails attaches serializable detail data and returns the error.
func (e *Error) WithDetails(details interface{}) *Error {
	if e == nil {
		return nil
	}
	e.Details = details
	return e
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// ErrCacheMiss signals a cache lookup without a stored value.
var ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")

// Pipeline errors cover the calendar/analysis/generation/validation stages.
var (
	ErrInvalidRange       = New("INVALID_RANGE", http.StatusBadRequest, "calendar start date must precede end date")
	ErrDuplicateHoliday   = New("DUPLICATE_HOLIDAY", http.StatusBadRequest, "conflicting holiday records for the same date")
	ErrInfeasibleLoad     = New("INFEASIBLE_LOAD", http.StatusUnprocessableEntity, "discipline load does not fit the available weeks")
	ErrNoFeasibleSlot     = New("NO_FEASIBLE_SLOT", http.StatusUnprocessableEntity, "no feasible slot for discipline within calendar bounds")
	ErrUnresolvedConflict = New("UNRESOLVED_CONFLICT", http.StatusConflict, "conflicts remain after retry budget exhausted")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
