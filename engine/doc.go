// Package engine executes unreliable remote operations with timeouts,
// bounded retries, and connection-pool telemetry.
//
// The engine runs each operation attempt under a per-attempt timeout with a
// genuine cancellation context, classifies failures through the classify
// package, and retries retryable failures with exponential backoff and
// jitter. Outcomes are explicit: ExecuteWithRetry returns a Result that is
// either a success carrying data or a failure carrying the final
// ClassifiedError, never a bare error.
//
// # Usage
//
//	eng := engine.New(engine.Config{})
//	defer eng.Close()
//
//	result := eng.ExecuteWithRetry(ctx, "fetch posts", func(ctx context.Context) (any, error) {
//	    return fetchPosts(ctx, eng.Client())
//	})
//	if !result.Success {
//	    return result.Err
//	}
//
// All attempts share a keep-alive connection pool sized by Config.PoolSize;
// Stats exposes pool counters and a rolling response-time average.
// DetectFailurePattern inspects a caller-owned history of classified errors
// for recurring network failure modes, and HealthCheck performs a
// lightweight reachability probe.
package engine
