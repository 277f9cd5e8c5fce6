package types

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

// Engine error kinds. Every failed operation returns exactly one of these.
const (
	InsufficientBalance  ErrorCode = "INSUFFICIENT_BALANCE"
	SupplyCapExceeded    ErrorCode = "SUPPLY_CAP_EXCEEDED"
	InvalidAmount        ErrorCode = "INVALID_AMOUNT"
	InvalidDuration      ErrorCode = "INVALID_DURATION"
	InvalidArgument      ErrorCode = "INVALID_ARGUMENT"
	NotFound             ErrorCode = "NOT_FOUND"
	NotAuthorized        ErrorCode = "NOT_AUTHORIZED"
	BelowMinimum         ErrorCode = "BELOW_MINIMUM"
	LimitReached         ErrorCode = "LIMIT_REACHED"
	InvalidState         ErrorCode = "INVALID_STATE"
	FeeTooHigh           ErrorCode = "FEE_TOO_HIGH"
	InsufficientCapacity ErrorCode = "INSUFFICIENT_CAPACITY"
	Overflow             ErrorCode = "OVERFLOW"
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
)

func (c ErrorCode) String() string {
	return string(c)
}

// Error is the typed, recoverable result of a failed operation. StatusCode is
// what a transport in front of the engine should answer with.
type Error struct {
	StatusCode int
	ErrorCode  ErrorCode
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.ErrorCode, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

// Errorf builds an error of the given kind with the status code conventionally
// attached to it.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(statusCodeFor(code), code, fmt.Errorf(format, args...))
}

func NewInternalServiceError(err error) *Error {
	return NewError(http.StatusInternalServerError, InternalServiceError, err)
}

// IsKind reports whether err (or anything it wraps) is an *Error of the given kind.
func IsKind(err error, code ErrorCode) bool {
	return KindOf(err) == code
}

// KindOf returns the error kind of err, or an empty code for foreign errors.
func KindOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.ErrorCode
	}
	return ""
}

func statusCodeFor(code ErrorCode) int {
	switch code {
	case NotFound:
		return http.StatusNotFound
	case NotAuthorized:
		return http.StatusForbidden
	case InvalidState, LimitReached, InsufficientCapacity, SupplyCapExceeded:
		return http.StatusConflict
	case InsufficientBalance:
		return http.StatusPaymentRequired
	case InternalServiceError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
