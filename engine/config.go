package engine

import "time"

// Config configures the resilience engine.
type Config struct {
	// Timeout bounds each individual attempt.
	// Default: 30s
	Timeout time.Duration

	// MaxRetries is the number of retries after the initial attempt.
	// Negative disables retries entirely.
	// Default: 3
	MaxRetries int

	// BaseDelay seeds the exponential backoff between retries.
	// Default: 1s
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay.
	// Default: 30s
	MaxDelay time.Duration

	// PoolSize bounds idle connections and concurrent attempts.
	// Default: 10
	PoolSize int

	// DisableKeepAlive turns off HTTP keep-alive on the pooled transport.
	// Default: false (keep-alive on)
	DisableKeepAlive bool

	// KeepAliveInterval is the TCP keep-alive probe interval.
	// Default: 60s
	KeepAliveInterval time.Duration

	// ProbeHost is the hostname resolved by HealthCheck.
	// Default: "example.com"
	ProbeHost string
}

// withDefaults returns a copy of the config with defaults applied.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.KeepAliveInterval <= 0 {
		c.KeepAliveInterval = 60 * time.Second
	}
	if c.ProbeHost == "" {
		c.ProbeHost = "example.com"
	}
	return c
}

// CallOption overrides engine configuration for a single call.
type CallOption func(*Config)

// WithCallTimeout overrides the per-attempt timeout for one call.
func WithCallTimeout(d time.Duration) CallOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithCallRetries overrides the retry budget for one call.
// Negative disables retries.
func WithCallRetries(n int) CallOption {
	return func(c *Config) {
		if n < 0 {
			n = 0
		}
		c.MaxRetries = n
	}
}

// WithCallBaseDelay overrides the backoff base delay for one call.
func WithCallBaseDelay(d time.Duration) CallOption {
	return func(c *Config) {
		c.BaseDelay = d
	}
}

// WithCallMaxDelay overrides the backoff delay cap for one call.
func WithCallMaxDelay(d time.Duration) CallOption {
	return func(c *Config) {
		c.MaxDelay = d
	}
}
