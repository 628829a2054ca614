package engine

import "github.com/jonwraymond/apiguard/classify"

// Severity grades a detected failure pattern.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Pattern tags returned by DetectFailurePattern.
const (
	PatternNoErrors                  = "no_errors"
	PatternHighTimeoutRate           = "high_timeout_rate"
	PatternConnectionInstability     = "connection_instability"
	PatternDNSResolutionFailure      = "dns_resolution_failure"
	PatternGeneralNetworkInstability = "general_network_instability"
	PatternSporadicErrors            = "sporadic_errors"
)

// patternHistoryWindow is how many recent errors are inspected.
const patternHistoryWindow = 10

// FailurePattern describes a recurring failure mode over recent history.
type FailurePattern struct {
	// Pattern is the detected pattern tag.
	Pattern string

	// Severity grades how urgent the pattern is.
	Severity Severity

	// Recommendation is fixed operator guidance for the pattern.
	Recommendation string
}

// DetectFailurePattern inspects the last 10 entries of a caller-owned error
// history (most recent last) for recurring network failure modes.
func DetectFailurePattern(history []*classify.ClassifiedError) FailurePattern {
	if len(history) == 0 {
		return FailurePattern{
			Pattern:        PatternNoErrors,
			Severity:       SeverityLow,
			Recommendation: "No recent errors detected.",
		}
	}

	recent := history
	if len(recent) > patternHistoryWindow {
		recent = recent[len(recent)-patternHistoryWindow:]
	}

	var timeouts, connFailures, dnsFailures, network int
	for _, cerr := range recent {
		if cerr == nil {
			continue
		}
		switch {
		case cerr.IsTimeout():
			timeouts++
			network++
		case cerr.IsConnectionFailure():
			connFailures++
			network++
		case cerr.IsDNSFailure():
			dnsFailures++
			network++
		case cerr.Type == classify.Network:
			network++
		}
	}

	switch {
	case timeouts >= 5:
		return FailurePattern{
			Pattern:        PatternHighTimeoutRate,
			Severity:       SeverityHigh,
			Recommendation: "Requests are timing out frequently. Increase the timeout or check remote service load.",
		}
	case connFailures >= 5:
		return FailurePattern{
			Pattern:        PatternConnectionInstability,
			Severity:       SeverityHigh,
			Recommendation: "Connections are being refused or reset. Verify the remote host is up and reachable.",
		}
	case dnsFailures >= 3:
		return FailurePattern{
			Pattern:        PatternDNSResolutionFailure,
			Severity:       SeverityMedium,
			Recommendation: "DNS lookups are failing. Check the hostname and DNS configuration.",
		}
	case network >= 5:
		return FailurePattern{
			Pattern:        PatternGeneralNetworkInstability,
			Severity:       SeverityMedium,
			Recommendation: "Multiple kinds of network failures detected. Check overall connectivity.",
		}
	default:
		return FailurePattern{
			Pattern:        PatternSporadicErrors,
			Severity:       SeverityLow,
			Recommendation: "Errors are sporadic. No immediate action required.",
		}
	}
}
