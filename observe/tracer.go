package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallTracer wraps OpenTelemetry tracing with call-scoped span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndCall must be best-effort and must not panic.
type CallTracer interface {
	// StartCall starts a new span for the named remote operation.
	StartCall(ctx context.Context, op string) (context.Context, trace.Span)

	// EndCall ends the span, recording attempt count and any error.
	EndCall(span trace.Span, attempts int, err error)
}

// callTracer is the concrete implementation of CallTracer.
type callTracer struct {
	tracer trace.Tracer
}

// NewCallTracer creates a CallTracer wrapping the given OpenTelemetry tracer.
func NewCallTracer(t trace.Tracer) CallTracer {
	return &callTracer{tracer: t}
}

// StartCall starts a new span with the operation name as an attribute.
func (t *callTracer) StartCall(ctx context.Context, op string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "api.call."+op,
		trace.WithAttributes(
			attribute.String("api.operation", op),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndCall ends the span and records the error status if present.
func (t *callTracer) EndCall(span trace.Span, attempts int, err error) {
	span.SetAttributes(attribute.Int("api.attempts", attempts))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NopCallTracer returns a CallTracer that produces no-op spans.
func NopCallTracer() CallTracer {
	return &callTracer{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
