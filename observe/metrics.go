package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CallMetrics records telemetry for remote API calls.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type CallMetrics interface {
	// RecordCall records a completed call with its attempt count, total
	// duration, and the canonical error type ("" for success).
	RecordCall(ctx context.Context, op string, attempts int, duration time.Duration, errType string)

	// RecordRetry records a single retry of the named operation.
	RecordRetry(ctx context.Context, op string)
}

// callMetrics is the concrete implementation of CallMetrics.
type callMetrics struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	retryCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewCallMetrics creates a CallMetrics instance backed by the given meter.
func NewCallMetrics(meter metric.Meter) (CallMetrics, error) {
	totalCount, err := meter.Int64Counter(
		"api.call.total",
		metric.WithDescription("Total number of remote API calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"api.call.errors",
		metric.WithDescription("Total number of failed remote API calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"api.call.retries",
		metric.WithDescription("Total number of retried attempts"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"api.call.duration_ms",
		metric.WithDescription("Remote API call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &callMetrics{
		totalCount:   totalCount,
		errorCount:   errorCount,
		retryCount:   retryCount,
		durationHist: durationHist,
	}, nil
}

// RecordCall records metrics for a completed call.
func (m *callMetrics) RecordCall(ctx context.Context, op string, attempts int, duration time.Duration, errType string) {
	attrs := []attribute.KeyValue{
		attribute.String("api.operation", op),
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)

	if errType != "" {
		m.errorCount.Add(ctx, 1, metric.WithAttributes(append(attrs,
			attribute.String("error.type", errType))...))
	}

	if attempts > 1 {
		m.retryCount.Add(ctx, int64(attempts-1), opt)
	}

	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordRetry records a single retry.
func (m *callMetrics) RecordRetry(ctx context.Context, op string) {
	m.retryCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api.operation", op),
	))
}

// NopCallMetrics returns a CallMetrics that records nothing.
func NopCallMetrics() CallMetrics {
	return &noopCallMetrics{}
}

// noopCallMetrics is a metrics implementation that does nothing.
type noopCallMetrics struct{}

func (m *noopCallMetrics) RecordCall(ctx context.Context, op string, attempts int, duration time.Duration, errType string) {
}

func (m *noopCallMetrics) RecordRetry(ctx context.Context, op string) {}
