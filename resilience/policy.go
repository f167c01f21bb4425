package resilience

import (
	"fmt"
	"strings"
	"time"
)

// RateLimitSignals is the fixed vocabulary that marks an error as a transient
// capacity failure. Matching is a case-insensitive substring test on the
// error text. This is sensitive to wording changes in model client libraries.
var RateLimitSignals = []string{"rate limit", "429"}

// IsRateLimitError reports whether err's message carries a rate-limit signal.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, signal := range RateLimitSignals {
		if strings.Contains(msg, signal) {
			return true
		}
	}
	return false
}

// RetryPolicy is the configurable retry policy for whole pipeline runs.
type RetryPolicy struct {
	MaxAttempts       int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseDelay         time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay          time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" mapstructure:"backoff_multiplier"`
}

// DefaultRetryPolicy returns 5 attempts starting at 2s, doubling, capped at 60s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:       5,
		BaseDelay:         2 * time.Second,
		MaxDelay:          60 * time.Second,
		BackoffMultiplier: 2,
	}
}

// ApplyDefaults fills zero fields from DefaultRetryPolicy.
func (p *RetryPolicy) ApplyDefaults() {
	d := DefaultRetryPolicy()
	if p.MaxAttempts == 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay == 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.MaxDelay == 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.BackoffMultiplier == 0 {
		p.BackoffMultiplier = d.BackoffMultiplier
	}
}

// Validate checks the policy bounds.
func (p *RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1 (got: %d)", p.MaxAttempts)
	}
	if p.BackoffMultiplier < 1 {
		return fmt.Errorf("retry.backoff_multiplier must be at least 1 (got: %v)", p.BackoffMultiplier)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("retry.max_delay (%s) must not be below retry.base_delay (%s)", p.MaxDelay, p.BaseDelay)
	}
	return nil
}

// RetryConfig converts the policy into a RetryConfig that retries only
// rate-limit errors, without jitter.
func (p RetryPolicy) RetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    p.MaxAttempts,
		InitialBackoff: p.BaseDelay,
		MaxBackoff:     p.MaxDelay,
		BackoffFactor:  p.BackoffMultiplier,
		RetryIf:        IsRateLimitError,
	}
}
