package resilience

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures a token bucket in front of a remote backend.
type RateLimiterConfig struct {
	// Name identifies this limiter in logs.
	Name string `yaml:"-" mapstructure:"-"`
	// Rate is the number of calls allowed per second. Default 1.
	Rate float64 `yaml:"rate" mapstructure:"rate"`
	// Burst is the bucket size. Default max(Rate, 1).
	Burst int `yaml:"burst" mapstructure:"burst"`
	// OnLimit is called when a caller has to wait for a token.
	OnLimit func(name string, wait time.Duration) `yaml:"-" mapstructure:"-"`
}

// RateLimiter is a token bucket that starts full.
type RateLimiter struct {
	name    string
	onLimit func(string, time.Duration)
	lim     *rate.Limiter
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(int(cfg.Rate), 1)
	}
	return &RateLimiter{
		name:    cfg.Name,
		onLimit: cfg.OnLimit,
		lim:     rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
	}
}

// Allow takes a token if one is available now.
func (rl *RateLimiter) Allow() bool { return rl.lim.Allow() }

// Wait blocks until a token is available or ctx is done. A cancelled
// wait gives its token back.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	r := rl.lim.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	if rl.onLimit != nil {
		rl.onLimit(rl.name, delay)
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Tokens is the number of tokens available now. It is negative while
// callers are waiting.
func (rl *RateLimiter) Tokens() float64 { return rl.lim.Tokens() }
