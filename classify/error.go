package classify

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorType is the canonical category of a classified failure.
type ErrorType string

const (
	// Authentication indicates invalid or expired credentials.
	Authentication ErrorType = "authentication"
	// RateLimit indicates the remote service rejected the call for quota reasons.
	RateLimit ErrorType = "rate_limit"
	// Network indicates a transport-level failure.
	Network ErrorType = "network"
	// Validation indicates the request input was malformed.
	Validation ErrorType = "validation"
	// APIError indicates the remote service returned an error response.
	APIError ErrorType = "api_error"
	// Unknown is the fallback for failures that match no other category.
	Unknown ErrorType = "unknown"
)

// Detail keys set by Classify.
const (
	// DetailOperation names the operation that failed.
	DetailOperation = "operation"
	// DetailCause carries the transport error code (ECONNREFUSED, ETIMEDOUT, ...).
	DetailCause = "cause"
	// DetailStatus carries the HTTP status code for response-shaped failures.
	DetailStatus = "status"
)

// Transport cause codes recorded under DetailCause.
const (
	CauseConnRefused = "ECONNREFUSED"
	CauseConnReset   = "ECONNRESET"
	CauseConnAborted = "ECONNABORTED"
	CauseTimedOut    = "ETIMEDOUT"
	CauseNotFound    = "ENOTFOUND"
	CauseCertificate = "CERT_FAILURE"
)

// ClassifiedError is the normalized record of a failed remote operation.
//
// Retryable is true only for Network failures (excluding certificate
// errors), RateLimit failures, and 5xx APIError responses.
type ClassifiedError struct {
	// Type is the canonical category.
	Type ErrorType

	// Code is an HTTP-like numeric code for the failure.
	Code int

	// Message is a human-readable description naming the failing operation.
	Message string

	// Retryable reports whether a retry may succeed.
	Retryable bool

	// RetryAfter is the server-provided retry hint. Zero means absent.
	RetryAfter time.Duration

	// Details carries string-keyed metadata about the failure.
	Details map[string]string

	// Timestamp is when the failure was classified.
	Timestamp time.Time

	// Cause is the original error, preserved for unwrapping.
	Cause error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the original cause.
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// CauseCode returns the transport cause code, or "" when not a transport failure.
func (e *ClassifiedError) CauseCode() string {
	return e.Details[DetailCause]
}

// IsTimeout reports whether the failure is timeout-flavored.
func (e *ClassifiedError) IsTimeout() bool {
	if e.Type != Network {
		return false
	}
	if e.CauseCode() == CauseTimedOut {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out")
}

// IsConnectionFailure reports whether the failure is a refused, reset, or
// aborted connection.
func (e *ClassifiedError) IsConnectionFailure() bool {
	if e.Type != Network {
		return false
	}
	switch e.CauseCode() {
	case CauseConnRefused, CauseConnReset, CauseConnAborted:
		return true
	}
	return false
}

// IsDNSFailure reports whether the failure is a name-resolution failure.
func (e *ClassifiedError) IsDNSFailure() bool {
	return e.Type == Network && e.CauseCode() == CauseNotFound
}

// StatusError is an HTTP-response-shaped failure: the remote service
// answered, but with a non-success status.
type StatusError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is an optional error description from the response body.
	Message string

	// Header holds the response headers, if available.
	Header http.Header
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// ValidationError is an input failure with optional field-level detail.
type ValidationError struct {
	// Message is the overall validation failure description.
	Message string

	// Fields maps field names to per-field problems.
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}
