// Package resilience provides retry with exponential backoff, the rate-limit
// error classifier used for pipeline retries, a token bucket rate limiter
// and a bulkhead for capping concurrent calls to the model backend.
//
//	policy := resilience.DefaultRetryPolicy() // 5 attempts, 2s, x2, 60s cap
//	cfg := policy.RetryConfig()               // retries only rate-limit errors
//	out, err := resilience.Retry(ctx, cfg, func() (string, error) { ... })
package resilience
