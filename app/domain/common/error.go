package common

import (
	"errors"
	"net/http"
)

// Kind is the closed set of failure categories the gateway distinguishes.
// Every kind maps to exactly one HTTP status at the gateway boundary.
type Kind string

const (
	KindUnauthenticated    Kind = "unauthenticated"
	KindCredentialExpired  Kind = "credential_expired"
	KindValidation         Kind = "validation_error"
	KindUnknownOperation   Kind = "unknown_operation"
	KindNoResource         Kind = "no_resource_available"
	KindGatewayRateLimit   Kind = "gateway_rate_limit_exceeded"
	KindUpstreamRateLimit  Kind = "upstream_rate_limit"
	KindUpstreamPermission Kind = "upstream_permission_denied"
	KindInternal           Kind = "internal"
)

// Error is a categorized error with an opaque code identifying the call site
// and optional structured details surfaced to the caller.
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func NewError(kind Kind, code, message string) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return string(e.Kind) + ": " + e.Message
}

// HTTPStatus maps the kind to its response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated, KindCredentialExpired:
		return http.StatusUnauthorized
	case KindValidation, KindUnknownOperation, KindNoResource:
		return http.StatusBadRequest
	case KindUpstreamPermission:
		return http.StatusForbidden
	case KindGatewayRateLimit, KindUpstreamRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// AsError extracts a *Error from err, wrapping unclassified errors as
// KindInternal so the boundary match stays exhaustive.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Kind:    KindInternal,
		Code:    "f0b4bfa1-9c1f-4a6d-9f34-64cdd1a0f1f2",
		Message: "internal error",
	}
}
