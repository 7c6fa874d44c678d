package nhs

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for the tool-invocation layer.
type ErrorKind string

const (
	// KindInvalidArgument means the input failed local validation and no
	// network call was made.
	KindInvalidArgument ErrorKind = "invalid_argument"

	// KindNotFound means the backend affirmatively reported no match.
	KindNotFound ErrorKind = "not_found"

	// KindUpstreamUnavailable means a transport failure or backend 5xx.
	// Retryable in principle; this client does not retry.
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"

	// KindUpstreamProtocolError means the backend responded but the payload
	// did not match the expected shape.
	KindUpstreamProtocolError ErrorKind = "upstream_protocol_error"
)

// Error is the single error type surfaced by this package.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// InvalidArgument builds a validation error naming the offending field.
func InvalidArgument(field, format string, args ...any) *Error {
	return &Error{
		Kind:    KindInvalidArgument,
		Message: field + ": " + fmt.Sprintf(format, args...),
	}
}

// NotFound builds a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// UpstreamUnavailable wraps a transport or server-side failure.
func UpstreamUnavailable(msg string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: msg, Err: err}
}

// UpstreamProtocolError wraps a response-shape mismatch.
func UpstreamProtocolError(msg string, err error) *Error {
	return &Error{Kind: KindUpstreamProtocolError, Message: msg, Err: err}
}

// KindOf extracts the ErrorKind from err, or empty string if err is not
// a *nhs.Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
