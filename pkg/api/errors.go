package api

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a client error.
type ErrorType string

const (
	// ErrorTypeConfiguration marks a missing or invalid credential or
	// option value. Detected before any network activity; never retried.
	ErrorTypeConfiguration ErrorType = "configuration_error"

	// ErrorTypeInvalidConversation marks a conversation the provider would
	// reject: more than one system message, an empty message list, or a
	// role the wire protocol does not know. Raised by the request builder.
	ErrorTypeInvalidConversation ErrorType = "invalid_conversation"

	// ErrorTypePrecondition marks an entry-point misuse caught before
	// transport, such as a stream flag that contradicts the call used or
	// an embedding batch outside the 1..16 bound.
	ErrorTypePrecondition ErrorType = "precondition_failed"

	// ErrorTypeProvider marks a semantic error the provider returned in a
	// parsed response body. Carries the provider's own error code.
	ErrorTypeProvider ErrorType = "provider_error"

	// ErrorTypeTransport marks a network or HTTP-level failure: connection
	// errors, timeouts, malformed frames, or an error status with no
	// parseable provider payload. The only retryable category.
	ErrorTypeTransport ErrorType = "transport_error"
)

// Error is the structured error surfaced by every failing operation in
// this module. Type decides retryability; Code holds the provider error
// code when one was returned; Param names the offending field for
// validation failures.
type Error struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code,omitempty"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Param != "":
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	case e.Code != "":
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Retryable reports whether retrying the operation could succeed. Only
// transport failures qualify; every other category is deterministic and
// would fail identically on a second attempt.
func (e *Error) Retryable() bool { return e.Type == ErrorTypeTransport }

// NewConfigurationError creates an Error for a missing or invalid
// credential or option field.
func NewConfigurationError(param, message string) *Error {
	return &Error{
		Type:    ErrorTypeConfiguration,
		Param:   param,
		Message: message,
	}
}

// NewInvalidConversationError creates an Error for a conversation that
// violates the provider's message invariants.
func NewInvalidConversationError(message string) *Error {
	return &Error{
		Type:    ErrorTypeInvalidConversation,
		Message: message,
	}
}

// NewPreconditionError creates an Error for an entry-point precondition
// violated before transport.
func NewPreconditionError(param, message string) *Error {
	return &Error{
		Type:    ErrorTypePrecondition,
		Param:   param,
		Message: message,
	}
}

// NewProviderError creates an Error for a semantic failure reported in a
// parsed provider response body.
func NewProviderError(code, message string) *Error {
	return &Error{
		Type:    ErrorTypeProvider,
		Code:    code,
		Message: message,
	}
}

// NewTransportError creates an Error for a network or HTTP-level failure.
// cause may be nil.
func NewTransportError(message string, cause error) *Error {
	return &Error{
		Type:    ErrorTypeTransport,
		Message: message,
		cause:   cause,
	}
}

// IsTransport reports whether err is (or wraps) a transport failure.
// Retry collaborators use this as their default classifier.
func IsTransport(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == ErrorTypeTransport
}

// TypeOf returns the ErrorType of err, or the empty string when err does
// not carry one.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}
