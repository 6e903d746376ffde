// Package errs defines the tool-facing error taxonomy on top of
// github.com/juju/errors, so every call site gets stack-traced, annotatable
// errors while the request surface can still recover a stable wire code.
package errs

import (
	"fmt"

	kerrors "github.com/juju/errors"
)

// Code is one of the stable codes in the tool-surface error taxonomy.
type Code string

const (
	NotFound             Code = "NOT_FOUND"
	InvalidID            Code = "INVALID_ID"
	InvalidIndex         Code = "INVALID_INDEX"
	CapacityLimitReached Code = "CAPACITY_LIMIT_REACHED"
	ValidationError      Code = "VALIDATION_ERROR"
	ValidationTimeout    Code = "VALIDATION_TIMEOUT"
	ConfigError          Code = "CONFIG_ERROR"
	Unauthorized         Code = "UNAUTHORIZED"
	Conflict             Code = "CONFLICT"
	Internal             Code = "INTERNAL_ERROR"
)

// Error is the concrete type every constructor in this package returns.
// It carries a stable Code plus an optional structured Details payload,
// and wraps a juju/errors-traced cause so Annotate/Trace keep working on
// it as it propagates up through the call stack.
type Error struct {
	Code    Code
	Details any
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return string(e.Code)
	}
	return e.cause.Error()
}

// Unwrap lets errors.Is/As and juju/errors.Cause see through to the
// underlying traced error.
func (e *Error) Unwrap() error { return e.cause }

func newErr(code Code, cause error) *Error {
	return &Error{Code: code, cause: kerrors.Trace(cause)}
}

// WithDetails attaches a structured details payload and returns the same
// error for chaining at the construction site.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func NewNotFound(format string, args ...any) *Error {
	return newErr(NotFound, kerrors.NewNotFound(nil, fmt.Sprintf(format, args...)))
}

func NewInvalidID(format string, args ...any) *Error {
	return newErr(InvalidID, kerrors.NewAlreadyExists(nil, fmt.Sprintf(format, args...)))
}

func NewInvalidIndex(format string, args ...any) *Error {
	return newErr(InvalidIndex, kerrors.NewNotValid(nil, fmt.Sprintf(format, args...)))
}

func NewCapacityLimitReached(format string, args ...any) *Error {
	return newErr(CapacityLimitReached, kerrors.Errorf(format, args...))
}

func NewValidationError(format string, args ...any) *Error {
	return newErr(ValidationError, kerrors.NewBadRequest(nil, fmt.Sprintf(format, args...)))
}

func NewValidationTimeout(format string, args ...any) *Error {
	return newErr(ValidationTimeout, kerrors.Errorf(format, args...))
}

func NewConfigError(format string, args ...any) *Error {
	return newErr(ConfigError, kerrors.NewBadRequest(nil, fmt.Sprintf(format, args...)))
}

func NewUnauthorized(format string, args ...any) *Error {
	return newErr(Unauthorized, kerrors.NewUnauthorized(nil, fmt.Sprintf(format, args...)))
}

func NewConflict(format string, args ...any) *Error {
	return newErr(Conflict, kerrors.NewAlreadyExists(nil, fmt.Sprintf(format, args...)))
}

func NewInternal(format string, args ...any) *Error {
	return newErr(Internal, kerrors.Errorf(format, args...))
}

// AsCoded extracts the *Error (and therefore its Code) from err, looking
// through any juju/errors annotation chain. ok is false for errors this
// package didn't construct, which callers should treat as INTERNAL_ERROR.
func AsCoded(err error) (*Error, bool) {
	for err != nil {
		if ce, ok := err.(*Error); ok {
			return ce, true
		}
		err = kerrors.Cause(err)
		if ce, ok := err.(*Error); ok {
			return ce, true
		}
		break
	}
	return nil, false
}

// CodeOf returns the stable Code for err, defaulting to Internal when err
// was not constructed by this package.
func CodeOf(err error) Code {
	if ce, ok := AsCoded(err); ok {
		return ce.Code
	}
	return Internal
}

// Message returns the public-safe message for err: the traced message with
// no stack frames, file paths, or internal identifiers.
func Message(err error) string {
	if ce, ok := AsCoded(err); ok && ce.cause != nil {
		return kerrors.Cause(ce.cause).Error()
	}
	return "internal error"
}

// HTTPStatus maps a Code to its wire HTTP status.
func HTTPStatus(c Code) int {
	switch c {
	case NotFound:
		return 404
	case InvalidID, InvalidIndex, ValidationError, ConfigError:
		return 400
	case ValidationTimeout:
		return 408
	case CapacityLimitReached, Conflict:
		return 409
	case Unauthorized:
		return 401
	default:
		return 500
	}
}
