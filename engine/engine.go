package engine

import (
	"context"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/apiguard/classify"
	"github.com/jonwraymond/apiguard/observe"
)

// Operation is a single remote call. It must honor ctx cancellation so a
// timed-out attempt aborts its in-flight work instead of being abandoned.
type Operation func(ctx context.Context) (any, error)

// Result is the explicit outcome of ExecuteWithRetry. Exactly one of Data
// and Err is meaningful, selected by Success.
type Result struct {
	// Success reports whether the operation eventually succeeded.
	Success bool

	// Data is the operation's return value on success.
	Data any

	// Err is the final classified failure when Success is false.
	Err *classify.ClassifiedError

	// Attempts is the number of attempts made, including the first.
	Attempts int

	// TotalTime is the wall-clock duration of the whole call, backoff included.
	TotalTime time.Duration
}

// Engine executes operations with per-attempt timeouts, classification-driven
// retries, and a shared keep-alive connection pool.
//
// An Engine is safe for concurrent use. Calls in flight share only the
// connection pool and its stats; unrelated calls never serialize on each other.
type Engine struct {
	mu        sync.RWMutex
	config    Config
	transport *http.Transport
	client    *http.Client
	slots     *semaphore.Weighted
	closed    bool

	stats      *connStats
	logger     observe.Logger
	metrics    observe.CallMetrics
	tracer     observe.CallTracer
	lookupHost func(ctx context.Context, host string) ([]string, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a structured logger to the engine.
func WithLogger(l observe.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetrics attaches call metrics to the engine.
func WithMetrics(m observe.CallMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracer attaches a call tracer to the engine.
func WithTracer(t observe.CallTracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// New creates an engine with the given configuration. Zero-valued config
// fields take the documented defaults.
func New(cfg Config, opts ...Option) *Engine {
	cfg = cfg.withDefaults()

	e := &Engine{
		config:     cfg,
		stats:      &connStats{},
		logger:     observe.NopLogger(),
		metrics:    observe.NopCallMetrics(),
		tracer:     observe.NopCallTracer(),
		lookupHost: net.DefaultResolver.LookupHost,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.transport = newTransport(cfg)
	e.client = &http.Client{Transport: e.transport}
	e.slots = semaphore.NewWeighted(int64(cfg.PoolSize))

	return e
}

func newTransport(cfg Config) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   cfg.Timeout,
		KeepAlive: cfg.KeepAliveInterval,
	}
	if cfg.DisableKeepAlive {
		dialer.KeepAlive = -1
	}

	return &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        cfg.PoolSize,
		MaxIdleConnsPerHost: cfg.PoolSize,
		MaxConnsPerHost:     cfg.PoolSize,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableKeepAlives:   cfg.DisableKeepAlive,
	}
}

// Client returns an HTTP client backed by the engine's connection pool.
// Operations should use it so attempts share keep-alive connections.
func (e *Engine) Client() *http.Client {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.client
}

// Config returns the engine's current configuration.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

// UpdateConfig replaces the engine configuration and recreates the
// connection pool. Attempts already in flight finish on the old pool.
func (e *Engine) UpdateConfig(cfg Config) {
	cfg = cfg.withDefaults()

	e.mu.Lock()
	defer e.mu.Unlock()

	old := e.transport
	e.config = cfg
	e.transport = newTransport(cfg)
	e.client = &http.Client{Transport: e.transport}
	e.slots = semaphore.NewWeighted(int64(cfg.PoolSize))

	if old != nil {
		old.CloseIdleConnections()
	}
}

// Close tears down the connection pool. Calls made after Close fail with
// ErrClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	if e.transport != nil {
		e.transport.CloseIdleConnections()
	}
}

// Stats returns a snapshot of connection-pool counters.
func (e *Engine) Stats() ConnectionStats {
	return e.stats.snapshot()
}

// ExecuteWithRetry runs op under the engine's retry discipline.
//
// Each attempt races op against the configured timeout with a real
// cancellation context. Failures are classified; non-retryable failures
// return immediately, retryable ones back off exponentially with jitter
// (honoring a server-provided Retry-After hint) until the retry budget is
// spent. The returned Result is always populated; Err is non-nil iff
// Success is false.
func (e *Engine) ExecuteWithRetry(ctx context.Context, op string, fn Operation, opts ...CallOption) Result {
	cfg := e.Config()
	for _, o := range opts {
		o(&cfg)
	}

	ctx, span := e.tracer.StartCall(ctx, op)
	start := time.Now()

	var last *classify.ClassifiedError
	attempts := 0
	maxAttempts := cfg.MaxRetries + 1

loop:
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt

		data, cerr := e.attempt(ctx, op, fn, cfg.Timeout)
		if cerr == nil {
			total := time.Since(start)
			e.metrics.RecordCall(ctx, op, attempt, total, "")
			e.tracer.EndCall(span, attempt, nil)
			e.logger.Debug(ctx, "call succeeded",
				observe.Field{Key: "operation", Value: op},
				observe.Field{Key: "attempts", Value: attempt},
			)
			return Result{Success: true, Data: data, Attempts: attempt, TotalTime: total}
		}

		last = cerr
		e.logger.Warn(ctx, "attempt failed",
			observe.Field{Key: "operation", Value: op},
			observe.Field{Key: "attempt", Value: attempt},
			observe.Field{Key: "error_type", Value: string(cerr.Type)},
			observe.Field{Key: "error", Value: cerr.Message},
			observe.Field{Key: "retryable", Value: cerr.Retryable},
		)

		if !cerr.Retryable || attempt == maxAttempts {
			break
		}

		delay := retryDelay(cfg, cerr, attempt)
		e.logger.Debug(ctx, "backing off",
			observe.Field{Key: "operation", Value: op},
			observe.Field{Key: "delay", Value: delay.String()},
		)

		select {
		case <-ctx.Done():
			break loop
		case <-time.After(delay):
		}
	}

	total := time.Since(start)
	e.metrics.RecordCall(ctx, op, attempts, total, string(last.Type))
	e.tracer.EndCall(span, attempts, last)
	return Result{Success: false, Err: last, Attempts: attempts, TotalTime: total}
}

// attempt runs one attempt under a pool slot and a timeout context.
func (e *Engine) attempt(ctx context.Context, op string, fn Operation, timeout time.Duration) (any, *classify.ClassifiedError) {
	e.mu.RLock()
	slots := e.slots
	closed := e.closed
	e.mu.RUnlock()

	if closed {
		return nil, classify.Classify(op, ErrClosed)
	}

	if err := slots.Acquire(ctx, 1); err != nil {
		return nil, classify.Classify(op, err)
	}
	defer slots.Release(1)

	e.stats.begin()
	defer e.stats.end()

	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		data any
		err  error
	}
	done := make(chan outcome, 1)
	started := time.Now()

	go func() {
		data, err := fn(actx)
		done <- outcome{data: data, err: err}
	}()

	select {
	case out := <-done:
		elapsed := time.Since(started)
		if out.err == nil {
			e.stats.observe(elapsed)
			return out.data, nil
		}

		cerr := classify.Classify(op, out.err)
		e.stats.fail()
		if !cerr.IsTimeout() {
			e.stats.observe(elapsed)
		}
		return nil, cerr

	case <-actx.Done():
		// The operation did not return in time. Its context is canceled so
		// a well-behaved operation aborts; the goroutine drains into the
		// buffered channel either way.
		e.stats.fail()
		return nil, classify.Classify(op, actx.Err())
	}
}

// retryDelay computes the backoff before the next attempt. A server-provided
// Retry-After hint wins; otherwise exponential backoff with up to 10% jitter,
// capped at MaxDelay.
func retryDelay(cfg Config, cerr *classify.ClassifiedError, attempt int) time.Duration {
	if cerr.RetryAfter > 0 {
		return cerr.RetryAfter
	}

	backoff := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt-1))
	// #nosec G404 -- jitter is non-cryptographic timing variance.
	backoff *= 1 + rand.Float64()*0.1

	delay := time.Duration(backoff)
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}
