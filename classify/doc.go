// Package classify normalizes failures from remote API calls into a
// canonical error taxonomy.
//
// Remote operations fail in many shapes: transport errors from the dialer,
// HTTP responses with non-2xx statuses, input validation failures, and
// plain errors with no structure at all. Classify folds all of them into a
// single ClassifiedError carrying a canonical type, an HTTP-like code, a
// human-readable message naming the failing operation, and a retryability
// verdict the retry layer can act on.
//
// # Usage
//
//	cerr := classify.Classify("fetch posts", err)
//	if cerr.Retryable {
//	    // schedule a retry, honoring cerr.RetryAfter when set
//	}
//
// Classification is deterministic and side-effect free: the same input
// always produces the same result (modulo the timestamp), and Classify
// never panics and never returns nil.
//
// # Taxonomy
//
//   - Authentication: credential problems (401/403, token keywords). Never retried.
//   - RateLimit: HTTP 429, carries the Retry-After hint when parseable.
//   - Network: transport failures. Retryable except certificate errors.
//   - Validation: malformed input (HTTP 400 or a ValidationError). Never retried.
//   - APIError: remote service errors. Retryable for 5xx only.
//   - Unknown: everything else. Never retried.
package classify
