package health

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/apiguard/engine"
)

// fakeProber returns a canned probe outcome.
type fakeProber struct {
	status engine.HealthStatus
}

func (p *fakeProber) HealthCheck(ctx context.Context) engine.HealthStatus {
	return p.status
}

func TestEngineChecker_Healthy(t *testing.T) {
	prober := &fakeProber{status: engine.HealthStatus{
		Healthy: true,
		Latency: 5 * time.Millisecond,
		Details: map[string]any{"host": "api.example.com"},
	}}

	checker := NewEngineChecker("remote-api", prober)
	if checker.Name() != "remote-api" {
		t.Errorf("Name() = %q, want %q", checker.Name(), "remote-api")
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Details["host"] != "api.example.com" {
		t.Errorf("Details[host] = %v, want api.example.com", result.Details["host"])
	}
	if result.Duration != 5*time.Millisecond {
		t.Errorf("Duration = %v, want 5ms", result.Duration)
	}
}

func TestEngineChecker_Unhealthy(t *testing.T) {
	prober := &fakeProber{status: engine.HealthStatus{
		Healthy: false,
		Details: map[string]any{"error": "no such host"},
	}}

	result := NewEngineChecker("remote-api", prober).Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", result.Status)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register("ok", NewCheckerFunc("ok", func(ctx context.Context) Result {
		return Healthy("fine")
	}))
	agg.Register("bad", NewCheckerFunc("bad", func(ctx context.Context) Result {
		return Unhealthy("broken", errors.New("down"))
	}))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if agg.OverallStatus(results) != StatusUnhealthy {
		t.Errorf("OverallStatus = %v, want unhealthy", agg.OverallStatus(results))
	}

	agg.Unregister("bad")
	results = agg.CheckAll(context.Background())
	if agg.OverallStatus(results) != StatusHealthy {
		t.Errorf("OverallStatus = %v, want healthy after unregister", agg.OverallStatus(results))
	}
}

func TestAggregator_CheckNotFound(t *testing.T) {
	agg := NewAggregator()

	_, err := agg.Check(context.Background(), "missing")
	if !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		return Healthy("eventually")
	}))

	results := agg.CheckAll(context.Background())
	if results["slow"].Status != StatusUnhealthy {
		t.Errorf("slow check Status = %v, want unhealthy on timeout", results["slow"].Status)
	}
	if !errors.Is(results["slow"].Error, ErrCheckTimeout) {
		t.Errorf("slow check Error = %v, want ErrCheckTimeout", results["slow"].Error)
	}
}

func TestHandlers(t *testing.T) {
	agg := NewAggregator()
	agg.Register("remote-api", NewEngineChecker("remote-api", &fakeProber{
		status: engine.HealthStatus{Healthy: true},
	}))

	t.Run("liveness", func(t *testing.T) {
		rec := httptest.NewRecorder()
		LivenessHandler()(rec, httptest.NewRequest("GET", "/healthz", nil))
		if rec.Code != 200 {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("readiness healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ReadinessHandler(agg)(rec, httptest.NewRequest("GET", "/readyz", nil))
		if rec.Code != 200 {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if rec.Body.String() != "OK" {
			t.Errorf("body = %q, want OK", rec.Body.String())
		}
	})

	t.Run("detailed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		DetailedHandler(agg)(rec, httptest.NewRequest("GET", "/health", nil))
		if rec.Code != 200 {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"remote-api"`) {
			t.Errorf("body %q missing check entry", rec.Body.String())
		}
	})

	t.Run("readiness unhealthy", func(t *testing.T) {
		agg.Register("down", NewEngineChecker("down", &fakeProber{
			status: engine.HealthStatus{Healthy: false},
		}))
		rec := httptest.NewRecorder()
		ReadinessHandler(agg)(rec, httptest.NewRequest("GET", "/readyz", nil))
		if rec.Code != 503 {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})
}
