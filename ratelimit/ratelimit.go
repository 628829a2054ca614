package ratelimit

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonwraymond/apiguard/classify"
	"github.com/jonwraymond/apiguard/observe"
)

// Config configures the per-actor limiter.
type Config struct {
	// Limit is the request budget per actor per window.
	// Default: 1000
	Limit int

	// Window is the sliding window duration.
	// Default: 1 hour
	Window time.Duration
}

// Policy configures the retry loop of ExecuteWithRetry.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	// Negative disables retries.
	// Default: 3
	MaxRetries int

	// BaseDelay seeds the exponential backoff.
	// Default: 1s
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay.
	// Default: 30s
	MaxDelay time.Duration

	// RateLimitPause is the wait applied when the remote service reports a
	// rate limit without a Retry-After hint.
	// Default: 60s
	RateLimitPause time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.MaxRetries == 0 {
		p.MaxRetries = 3
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.RateLimitPause <= 0 {
		p.RateLimitPause = 60 * time.Second
	}
	return p
}

// Stats aggregates usage across all tracked actors.
type Stats struct {
	// TotalActors is the number of actors with tracked state.
	TotalActors int

	// TotalRequests is the sum of request counts in current windows.
	TotalRequests int

	// ActiveActors is the number of actors with requests in a live window.
	ActiveActors int
}

// actorWindow is one actor's sliding request window.
type actorWindow struct {
	windowStart time.Time
	count       int
}

// Limiter tracks per-actor request windows.
//
// A Limiter is safe for concurrent use; state is keyed by actor so unrelated
// actors contend only on the map lock, never on each other's windows.
type Limiter struct {
	mu     sync.Mutex
	actors map[string]*actorWindow

	config Config
	logger observe.Logger
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger attaches a structured logger to the limiter.
func WithLogger(l observe.Logger) Option {
	return func(rl *Limiter) {
		rl.logger = l
	}
}

// WithClock overrides the limiter's time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(rl *Limiter) {
		rl.now = now
	}
}

// New creates a limiter. Zero-valued config fields take the documented defaults.
func New(cfg Config, opts ...Option) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 1000
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Hour
	}

	rl := &Limiter{
		actors: make(map[string]*actorWindow),
		config: cfg,
		logger: observe.NopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// window returns the actor's state, creating it and lazily resetting an
// expired window first. Callers must hold mu.
func (rl *Limiter) window(actorID string) *actorWindow {
	w, ok := rl.actors[actorID]
	if !ok {
		w = &actorWindow{windowStart: rl.now()}
		rl.actors[actorID] = w
		return w
	}

	if rl.now().Sub(w.windowStart) >= rl.config.Window {
		w.windowStart = rl.now()
		w.count = 0
	}
	return w
}

// Check reports whether the actor has request budget left in its window.
func (rl *Limiter) Check(actorID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.window(actorID).count < rl.config.Limit
}

// Record counts one request against the actor's window.
func (rl *Limiter) Record(actorID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.window(actorID).count++
}

// Acquire records one request if the actor has budget left, or returns
// ErrLimited without recording.
func (rl *Limiter) Acquire(actorID string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w := rl.window(actorID)
	if w.count >= rl.config.Limit {
		return ErrLimited
	}
	w.count++
	return nil
}

// Usage returns the actor's current window count.
func (rl *Limiter) Usage(actorID string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.window(actorID).count
}

// Reset clears the actor's window.
func (rl *Limiter) Reset(actorID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.actors, actorID)
}

// ClearAll clears every actor's window.
func (rl *Limiter) ClearAll() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.actors = make(map[string]*actorWindow)
}

// Stats aggregates usage across all tracked actors. Expired windows count
// toward TotalActors but not ActiveActors or TotalRequests.
func (rl *Limiter) Stats() Stats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := Stats{TotalActors: len(rl.actors)}
	now := rl.now()
	for _, w := range rl.actors {
		if now.Sub(w.windowStart) >= rl.config.Window {
			continue
		}
		stats.TotalRequests += w.count
		if w.count > 0 {
			stats.ActiveActors++
		}
	}
	return stats
}

// HandleRateLimit pauses after a remote rate-limit failure, honoring the
// server's Retry-After hint or falling back to the default pause. Errors of
// any other type are a no-op. Returns early with ctx.Err() on cancellation.
func (rl *Limiter) HandleRateLimit(ctx context.Context, cerr *classify.ClassifiedError, pause time.Duration) error {
	if cerr == nil || cerr.Type != classify.RateLimit {
		return nil
	}

	if cerr.RetryAfter > 0 {
		pause = cerr.RetryAfter
	}

	rl.logger.Warn(ctx, "rate limited by remote service",
		observe.Field{Key: "pause", Value: pause.String()},
	)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(pause):
		return nil
	}
}

// ExecuteWithRetry runs op under the classify/backoff retry discipline,
// additionally pausing on remote rate-limit failures. When actorID is
// non-empty, each attempt is recorded against the actor's window. The last
// classified error is returned once the retry budget is spent.
func (rl *Limiter) ExecuteWithRetry(ctx context.Context, op string, fn func(ctx context.Context) (any, error), policy Policy, actorID string) (any, error) {
	policy = policy.withDefaults()

	var last *classify.ClassifiedError
	maxAttempts := policy.MaxRetries + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if actorID != "" {
			rl.Record(actorID)
		}

		data, err := fn(ctx)
		if err == nil {
			return data, nil
		}

		cerr := classify.Classify(op, err)
		last = cerr
		rl.logger.Warn(ctx, "attempt failed",
			observe.Field{Key: "operation", Value: op},
			observe.Field{Key: "attempt", Value: attempt},
			observe.Field{Key: "error_type", Value: string(cerr.Type)},
		)

		if !cerr.Retryable || attempt == maxAttempts {
			break
		}

		if cerr.Type == classify.RateLimit {
			if err := rl.HandleRateLimit(ctx, cerr, policy.RateLimitPause); err != nil {
				break
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil, last
		case <-time.After(backoffDelay(policy, attempt)):
		}
	}

	return nil, last
}

// backoffDelay mirrors the engine's exponential backoff with 10% jitter.
func backoffDelay(policy Policy, attempt int) time.Duration {
	backoff := float64(policy.BaseDelay) * math.Pow(2, float64(attempt-1))
	// #nosec G404 -- jitter is non-cryptographic timing variance.
	backoff *= 1 + rand.Float64()*0.1

	delay := time.Duration(backoff)
	if delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	return delay
}
