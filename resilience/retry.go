package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig controls Retry. Zero fields take the defaults noted.
type RetryConfig struct {
	// MaxAttempts counts the first call. Default 3.
	MaxAttempts int
	// InitialBackoff follows the first failure. Default 100ms.
	InitialBackoff time.Duration
	// MaxBackoff caps every delay. Default 10s.
	MaxBackoff time.Duration
	// BackoffFactor multiplies the delay per attempt. Default 2.
	BackoffFactor float64
	// Jitter spreads each delay by up to this fraction either way.
	Jitter float64
	// RetryIf reports whether err is worth another attempt. Default:
	// everything but context cancellation.
	RetryIf func(error) bool
	// OnRetry runs before each sleep with the failed attempt number.
	OnRetry func(attempt int, err error, backoff time.Duration)
	// Sleep waits for d or until ctx is done. Default: a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryIf retries anything but context cancellation or expiry.
func DefaultRetryIf(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (cfg *RetryConfig) applyDefaults() {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 100 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * time.Second
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = 2
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = DefaultRetryIf
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
}

// Retry calls fn until it succeeds, fails with an error RetryIf rejects, or
// MaxAttempts calls have failed. The final error is returned unwrapped.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	cfg.applyDefaults()
	var zero T

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		out, err := fn()
		if err == nil {
			return out, nil
		}
		if attempt >= cfg.MaxAttempts || !cfg.RetryIf(err) {
			return zero, err
		}

		delay := Backoff(attempt, cfg)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}
		if err := cfg.Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// Backoff is the delay after failed attempt n (from 1):
// InitialBackoff * BackoffFactor^(n-1), jittered, then capped at MaxBackoff.
func Backoff(n int, cfg RetryConfig) time.Duration {
	d := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffFactor, float64(n-1))
	if cfg.Jitter > 0 {
		d *= 1 + cfg.Jitter*(2*rand.Float64()-1)
	}
	if d < 0 {
		d = float64(cfg.InitialBackoff)
	}
	return time.Duration(min(d, float64(cfg.MaxBackoff)))
}

// BackoffSchedule lists Backoff for attempts 1..MaxAttempts. Retry sleeps
// only between attempts, so the last entry is informational.
func BackoffSchedule(cfg RetryConfig) []time.Duration {
	cfg.applyDefaults()
	out := make([]time.Duration, cfg.MaxAttempts)
	for i := range out {
		out[i] = Backoff(i+1, cfg)
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
