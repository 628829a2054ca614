// Package ratelimit throttles remote API usage per actor and wraps
// operations with classification-driven retries.
//
// Each actor (typically an authenticated account) gets a sliding request
// window: once the window's request budget is spent, Check reports the actor
// as limited until the window expires and lazily resets. State is in-memory
// only and lost on restart.
//
// # Usage
//
//	rl := ratelimit.New(ratelimit.Config{})
//
//	if !rl.Check("account-1") {
//	    return ratelimit.ErrLimited
//	}
//	data, err := rl.ExecuteWithRetry(ctx, "fetch posts", op, ratelimit.Policy{}, "account-1")
//
// ExecuteWithRetry uses the same classify/backoff discipline as the engine
// package and additionally pauses when the remote service itself reports a
// rate limit, honoring its Retry-After hint.
package ratelimit
