package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// responseTimeSamples is the size of the rolling response-time window.
const responseTimeSamples = 100

// ConnectionStats is a point-in-time snapshot of pool activity.
type ConnectionStats struct {
	// TotalRequests counts every attempt started.
	TotalRequests int64

	// FailedRequests counts attempts that ended in failure.
	FailedRequests int64

	// ActiveConnections counts attempts currently in flight.
	ActiveConnections int64

	// AverageResponseTime is the rolling mean over the last 100 completed,
	// non-timed-out attempts.
	AverageResponseTime time.Duration
}

// connStats accumulates attempt counters and a rolling latency window.
// Counters are atomic; the sample ring is guarded by mu.
type connStats struct {
	total  atomic.Int64
	failed atomic.Int64
	active atomic.Int64

	mu      sync.Mutex
	samples [responseTimeSamples]time.Duration
	next    int
	count   int
}

// begin records the start of an attempt. Paired with end.
func (s *connStats) begin() {
	s.total.Add(1)
	s.active.Add(1)
}

// end records the end of an attempt, on every path.
func (s *connStats) end() {
	s.active.Add(-1)
}

// fail records an attempt that ended in failure.
func (s *connStats) fail() {
	s.failed.Add(1)
}

// observe folds a completed attempt's duration into the rolling window.
// Timed-out attempts are never observed.
func (s *connStats) observe(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples[s.next] = d
	s.next = (s.next + 1) % responseTimeSamples
	if s.count < responseTimeSamples {
		s.count++
	}
}

// snapshot returns the current stats.
func (s *connStats) snapshot() ConnectionStats {
	s.mu.Lock()
	var sum time.Duration
	for i := 0; i < s.count; i++ {
		sum += s.samples[i]
	}
	count := s.count
	s.mu.Unlock()

	var avg time.Duration
	if count > 0 {
		avg = sum / time.Duration(count)
	}

	return ConnectionStats{
		TotalRequests:       s.total.Load(),
		FailedRequests:      s.failed.Load(),
		ActiveConnections:   s.active.Load(),
		AverageResponseTime: avg,
	}
}
