package engine

import (
	"context"
	"time"
)

// healthProbeTimeout bounds the health probe independently of call timeouts.
const healthProbeTimeout = 5 * time.Second

// HealthStatus is the outcome of a reachability probe.
type HealthStatus struct {
	// Healthy reports whether the probe succeeded.
	Healthy bool

	// Latency is how long the probe took.
	Latency time.Duration

	// Details carries probe metadata (host, resolved address count, error).
	Details map[string]any
}

// HealthCheck probes remote reachability by resolving the configured probe
// host. It never returns an error: any failure is captured in the returned
// status.
func (e *Engine) HealthCheck(ctx context.Context) HealthStatus {
	host := e.Config().ProbeHost

	pctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	details := map[string]any{
		"probe": "dns",
		"host":  host,
	}

	start := time.Now()
	addrs, err := e.lookupHost(pctx, host)
	latency := time.Since(start)

	if err != nil {
		details["error"] = err.Error()
		return HealthStatus{Healthy: false, Latency: latency, Details: details}
	}

	details["addresses"] = len(addrs)
	return HealthStatus{Healthy: true, Latency: latency, Details: details}
}
