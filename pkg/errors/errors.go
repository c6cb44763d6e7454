package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrDuplicateShare
	ErrAlreadyClaimed
	ErrExpired
	ErrEmailMismatch
	ErrPartialClaimFailure
	ErrUpstreamUnavailable
	ErrConflict
)

// ErrInvalidInput is the taxonomy name for malformed caller input.
const ErrInvalidInput = ErrBadRequest

var codeNames = map[ErrorCode]string{
	ErrNotFound:            "NOT_FOUND",
	ErrBadRequest:          "INVALID_INPUT",
	ErrUnauthorized:        "UNAUTHORIZED",
	ErrForbidden:           "FORBIDDEN",
	ErrInternal:            "INTERNAL",
	ErrDuplicateShare:      "DUPLICATE_SHARE",
	ErrAlreadyClaimed:      "ALREADY_CLAIMED",
	ErrExpired:             "EXPIRED",
	ErrEmailMismatch:       "EMAIL_MISMATCH",
	ErrPartialClaimFailure: "PARTIAL_CLAIM_FAILURE",
	ErrUpstreamUnavailable: "UPSTREAM_UNAVAILABLE",
	ErrConflict:            "CONFLICT",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_%d", int(c))
}

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func InvalidInput(message string) *AppError {
	return NewBadRequest(message, nil)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

func DuplicateShare(message string, err error) *AppError {
	return &AppError{
		Code:    ErrDuplicateShare,
		Message: message,
		Err:     err,
	}
}

func AlreadyClaimed() *AppError {
	return &AppError{
		Code:    ErrAlreadyClaimed,
		Message: "invitation has already been claimed",
	}
}

func Expired(resource string) *AppError {
	return &AppError{
		Code:    ErrExpired,
		Message: fmt.Sprintf("%s has expired", resource),
	}
}

func EmailMismatch() *AppError {
	return &AppError{
		Code:    ErrEmailMismatch,
		Message: "invitation was issued to a different email address",
	}
}

func PartialClaimFailure(err error) *AppError {
	return &AppError{
		Code:    ErrPartialClaimFailure,
		Message: "claim left a share without a claimed invitation",
		Err:     err,
	}
}

func UpstreamUnavailable(service string, err error) *AppError {
	return &AppError{
		Code:    ErrUpstreamUnavailable,
		Message: fmt.Sprintf("%s unavailable", service),
		Err:     err,
	}
}

func Conflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// As is errors.As from the standard library, re-exported so callers that
// import this package under the name errors keep access to it.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
