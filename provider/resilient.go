package provider

import (
	"context"
	"errors"

	apperrors "github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/resilience"
)

// ResilienceConfig bundles optional admission policies for a provider.
// Nil fields are skipped. Retries are not applied here: a failed call
// surfaces to the pipeline, whose retry executor restarts the whole run.
type ResilienceConfig struct {
	// RateLimiter spaces calls out with a token bucket.
	RateLimiter *resilience.RateLimiterConfig
	// Bulkhead caps concurrent calls.
	Bulkhead *resilience.BulkheadConfig
}

// IsEmpty returns true if no policy is configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.RateLimiter == nil && c.Bulkhead == nil
}

// WithResilience wraps p so that each call first waits for a rate-limit
// token, then for a bulkhead slot. An empty config returns p unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	r := &resilientRR[I, O]{inner: p}
	if cfg.RateLimiter != nil {
		r.rl = resilience.NewRateLimiter(*cfg.RateLimiter)
	}
	if cfg.Bulkhead != nil {
		r.bh = resilience.NewBulkhead(*cfg.Bulkhead)
	}
	return r
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	rl    *resilience.RateLimiter
	bh    *resilience.Bulkhead
}

func (r *resilientRR[I, O]) Name() string                         { return r.inner.Name() }
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	var zero O
	if r.rl != nil {
		if err := r.rl.Wait(ctx); err != nil {
			return zero, wrapResilienceError(r.inner.Name(), err)
		}
	}
	if r.bh == nil {
		return r.inner.Execute(ctx, input)
	}

	var callErr error
	out, err := resilience.ExecuteWithResult(ctx, r.bh, func() (O, error) {
		o, e := r.inner.Execute(ctx, input)
		callErr = e
		return o, e
	})
	if err != nil && callErr == nil {
		// rejected before the call was made
		return zero, wrapResilienceError(r.inner.Name(), err)
	}
	return out, err
}

// wrapResilienceError converts admission failures into AppErrors. Errors from
// the wrapped provider itself are never passed through here.
func wrapResilienceError(name string, err error) error {
	switch {
	case errors.Is(err, resilience.ErrBulkheadFull), errors.Is(err, resilience.ErrBulkheadTimeout):
		return apperrors.ServiceUnavailable(name).
			WithCause(err).
			WithDetail("reason", "concurrency limit reached")
	case errors.Is(err, context.Canceled):
		return apperrors.Timeout("request canceled").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("deadline exceeded").WithCause(err)
	default:
		return err
	}
}
