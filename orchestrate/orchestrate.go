package orchestrate

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/apiguard/classify"
	"github.com/jonwraymond/apiguard/engine"
	"github.com/jonwraymond/apiguard/observe"
)

// Kind tells the host how to surface a failed call.
type Kind string

const (
	// KindCallerInput marks failures the caller must fix (bad input).
	KindCallerInput Kind = "caller_input"

	// KindOperational marks failures of the remote service or the network.
	KindOperational Kind = "operational"
)

// CallError is the terminal error crossing the core boundary.
type CallError struct {
	// Kind selects the host's surfacing strategy.
	Kind Kind

	// Code is the HTTP-like numeric code from classification.
	Code int

	// Message is the formatted error message, troubleshooting included.
	Message string

	// Troubleshooting is the fixed guidance for the error type, "" when none.
	Troubleshooting string

	// Cause is the underlying classified error.
	Cause *classify.ClassifiedError
}

// Error implements the error interface.
func (e *CallError) Error() string {
	return e.Message
}

// Unwrap returns the underlying classified error.
func (e *CallError) Unwrap() error {
	return e.Cause
}

// maxRetryDelay caps the advisory retry delay.
const maxRetryDelay = 30 * time.Second

// troubleshooting is the fixed guidance table per error type. APIError
// guidance applies only to retryable (5xx) failures.
var troubleshooting = map[classify.ErrorType]string{
	classify.Authentication: "Verify your credentials are valid and have not expired, then re-authenticate.",
	classify.RateLimit:      "Too many requests. Wait before retrying or reduce request frequency.",
	classify.Network:        "Check your network connection and verify the remote host is reachable.",
	classify.Validation:     "Review the request parameters and correct the invalid fields.",
	classify.APIError:       "The remote service is experiencing issues. Retry after a short delay.",
}

// Guidance returns the troubleshooting text for a classified error, or ""
// when the type has none.
func Guidance(cerr *classify.ClassifiedError) string {
	if cerr == nil {
		return ""
	}
	if cerr.Type == classify.APIError && !cerr.Retryable {
		return ""
	}
	return troubleshooting[cerr.Type]
}

// FormatMessage renders the caller-facing message for a classified error:
// "API Error (<type>): <message>", plus a troubleshooting paragraph when
// guidance exists for the type.
func FormatMessage(cerr *classify.ClassifiedError) string {
	if cerr == nil {
		return ""
	}

	msg := fmt.Sprintf("API Error (%s): %s", cerr.Type, cerr.Message)
	if guidance := Guidance(cerr); guidance != "" {
		msg += "\n\nTroubleshooting: " + guidance
	}
	return msg
}

// RetryDelay advises how long to wait before retry number attempt. A
// rate-limit Retry-After hint wins; otherwise exponential starting at 1s,
// capped at 30s.
func RetryDelay(cerr *classify.ClassifiedError, attempt int) time.Duration {
	if cerr != nil && cerr.Type == classify.RateLimit && cerr.RetryAfter > 0 {
		return cerr.RetryAfter
	}

	if attempt < 1 {
		attempt = 1
	}
	delay := time.Second * time.Duration(int64(1)<<(attempt-1))
	if delay > maxRetryDelay || delay <= 0 {
		delay = maxRetryDelay
	}
	return delay
}

// Orchestrator composes the classifier and retry engine behind the single
// entry point hosts call.
type Orchestrator struct {
	engine *engine.Engine
	logger observe.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a structured logger to the orchestrator.
func WithLogger(l observe.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// New creates an orchestrator over the given engine.
func New(eng *engine.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine: eng,
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Engine returns the underlying engine.
func (o *Orchestrator) Engine() *engine.Engine {
	return o.engine
}

// Execute runs op through the retry engine and converts a terminal failure
// into a CallError. On success the operation's data is returned directly.
func (o *Orchestrator) Execute(ctx context.Context, op string, fn engine.Operation, opts ...engine.CallOption) (any, error) {
	result := o.engine.ExecuteWithRetry(ctx, op, fn, opts...)
	if result.Success {
		return result.Data, nil
	}

	callErr := newCallError(result.Err)
	o.logger.Error(ctx, "call failed",
		observe.Field{Key: "operation", Value: op},
		observe.Field{Key: "kind", Value: string(callErr.Kind)},
		observe.Field{Key: "code", Value: callErr.Code},
		observe.Field{Key: "attempts", Value: result.Attempts},
	)
	return nil, callErr
}

// newCallError converts a classified error into the caller-facing shape.
// Validation failures are the caller's to fix; everything else is operational.
func newCallError(cerr *classify.ClassifiedError) *CallError {
	kind := KindOperational
	if cerr.Type == classify.Validation {
		kind = KindCallerInput
	}

	return &CallError{
		Kind:            kind,
		Code:            cerr.Code,
		Message:         FormatMessage(cerr),
		Troubleshooting: Guidance(cerr),
		Cause:           cerr,
	}
}
