// Package observe provides telemetry for the resilience engine: structured
// logging, OpenTelemetry metrics and traces for remote API calls, and
// exporter wiring.
//
// The package is optional everywhere it is accepted. Components take a
// Logger, CallMetrics, or Tracer and fall back to no-op implementations
// when none is supplied, so telemetry never changes call behavior.
//
// # Setup
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "apiguard",
//	    Version:     "1.0.0",
//	    Tracing:     observe.TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.0},
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer obs.Shutdown(ctx)
//
// When the prometheus exporter is selected, Observer.MetricsHandler exposes
// the scrape endpoint for the underlying registry.
package observe
