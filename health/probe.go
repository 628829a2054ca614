package health

import (
	"context"

	"github.com/jonwraymond/apiguard/engine"
)

// Prober is anything that can run a reachability probe. The resilience
// engine satisfies it.
type Prober interface {
	HealthCheck(ctx context.Context) engine.HealthStatus
}

// EngineChecker adapts an engine's reachability probe to the Checker interface.
type EngineChecker struct {
	name   string
	prober Prober
}

// NewEngineChecker creates a checker over the given prober.
func NewEngineChecker(name string, prober Prober) *EngineChecker {
	return &EngineChecker{name: name, prober: prober}
}

// Name returns the name of this checker.
func (c *EngineChecker) Name() string {
	return c.name
}

// Check runs the probe and maps its outcome onto a health Result.
func (c *EngineChecker) Check(ctx context.Context) Result {
	status := c.prober.HealthCheck(ctx)

	result := Result{
		Status:   StatusHealthy,
		Message:  "remote reachable",
		Details:  status.Details,
		Duration: status.Latency,
	}
	if !status.Healthy {
		result.Status = StatusUnhealthy
		result.Message = "remote unreachable"
	}
	if result.Details == nil {
		result.Details = map[string]any{}
	}
	result.Details["latency"] = status.Latency.String()
	return result
}
