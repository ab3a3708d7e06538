package errors

import (
	"fmt"
	"strings"
)

// Error codes shared across the service. The HTTP layer owns the mapping to
// status codes; everything below it speaks in these.
const (
	EInternal         = "internal error"
	ENotFound         = "not found"
	EConflict         = "conflict"    // action cannot be performed
	EInvalid          = "invalid"     // validation failed
	EUnavailable      = "unavailable" // dependency not reachable
	EForbidden        = "forbidden"
	EUnauthorized     = "unauthorized"
	EMethodNotAllowed = "method not allowed"
)

// Error is the service-wide error value.
//
// Code targets automated handling, Msg the operator reading a response or a
// log line, and Op/Err chain errors into a logical stack trace.
//
//	&Error{Code: ENotFound, Msg: "batch not found"}
//	&Error{Code: EInternal, Op: "bolt.CreateBatch", Err: err}
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

// Error implements the error interface by writing out the recursive messages.
func (e *Error) Error() string {
	if e.Msg != "" && e.Err != nil {
		var b strings.Builder
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
		return b.String()
	} else if e.Msg != "" {
		return e.Msg
	} else if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("<%s>", e.Code)
}

// Unwrap exposes the wrapped error to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of the root error, if available; otherwise
// returns EInternal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	e, ok := err.(*Error)
	if !ok {
		return EInternal
	}

	if e.Code != "" {
		return e.Code
	}

	if e.Err != nil {
		return ErrorCode(e.Err)
	}

	return EInternal
}

// ErrorMessage returns the human-readable message of the error, if available.
// Otherwise returns a generic error message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	e, ok := err.(*Error)
	if !ok {
		return "An internal error has occurred."
	}

	if e.Msg != "" {
		if e.Err != nil {
			return e.Msg + ": " + ErrorMessage(e.Err)
		}
		return e.Msg
	}

	if e.Err != nil {
		return ErrorMessage(e.Err)
	}

	return "An internal error has occurred."
}

// ErrorOp returns the op of the error, if available; otherwise returns the
// empty string.
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}

	e, ok := err.(*Error)
	if !ok {
		return ""
	}

	if e.Op != "" {
		return e.Op
	}

	if e.Err != nil {
		return ErrorOp(e.Err)
	}

	return ""
}

// ErrInternalServiceError wraps err as an internal error unless it already
// carries a code, preserving typed errors on their way up the stack.
func ErrInternalServiceError(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return &Error{Code: EInternal, Op: op, Err: err}
}
