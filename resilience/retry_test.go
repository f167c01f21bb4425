package resilience

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

// recordSleep returns a Sleep func that records delays instead of waiting.
func recordSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	callCount := 0
	result, err := Retry(context.Background(), RetryConfig{}, func() (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestRetry_SucceedsAfterRetry(t *testing.T) {
	var delays []time.Duration
	cfg := RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, Sleep: recordSleep(&delays)}
	callCount := 0

	result, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		if callCount < 3 {
			return "", errors.New("temporary error")
		}
		return "success", nil
	})

	if err != nil || result != "success" {
		t.Fatalf("expected success, got %q, %v", result, err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
	if len(delays) != 2 {
		t.Errorf("expected 2 sleeps, got %v", delays)
	}
}

func TestRetry_RateLimitScheduleAndLastError(t *testing.T) {
	var delays []time.Duration
	var logged []int
	cfg := DefaultRetryPolicy().RetryConfig()
	cfg.Sleep = recordSleep(&delays)
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { logged = append(logged, attempt) }

	calls := 0
	var last error
	_, err := Retry(context.Background(), cfg, func() (string, error) {
		calls++
		last = fmt.Errorf("groq: HTTP 429: attempt %d", calls)
		return "", last
	})

	if calls != 5 {
		t.Errorf("expected 5 attempts, got %d", calls)
	}
	if err != last {
		t.Errorf("expected the last error unchanged, got %v", err)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	if !reflect.DeepEqual(delays, want) {
		t.Errorf("sleeps = %v, want %v", delays, want)
	}
	if !reflect.DeepEqual(logged, []int{1, 2, 3, 4}) {
		t.Errorf("OnRetry attempts = %v", logged)
	}
}

func TestRetry_FatalErrorDoesNotSleep(t *testing.T) {
	var delays []time.Duration
	cfg := DefaultRetryPolicy().RetryConfig()
	cfg.Sleep = recordSleep(&delays)

	calls := 0
	fatal := errors.New("Error: invalid api key")
	_, err := Retry(context.Background(), cfg, func() (int, error) {
		calls++
		return 0, fatal
	})

	if err != fatal {
		t.Errorf("expected fatal error returned as is, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if len(delays) != 0 {
		t.Errorf("expected no sleep, got %v", delays)
	}
}

func TestBackoffSchedule_PipelinePolicy(t *testing.T) {
	got := BackoffSchedule(DefaultRetryPolicy().RetryConfig())
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 32 * time.Second}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BackoffSchedule = %v, want %v", got, want)
	}
}

func TestBackoff_Capped(t *testing.T) {
	cfg := DefaultRetryPolicy().RetryConfig()
	if got := Backoff(6, cfg); got != 60*time.Second {
		t.Errorf("attempt 6 backoff = %v, want 60s cap", got)
	}
	if got := Backoff(10, cfg); got != 60*time.Second {
		t.Errorf("attempt 10 backoff = %v, want 60s cap", got)
	}
}

func TestBackoff_JitterStaysInRange(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, MaxBackoff: time.Minute, BackoffFactor: 2, Jitter: 0.5}
	for i := 0; i < 50; i++ {
		d := Backoff(2, cfg)
		if d < time.Second || d > 3*time.Second {
			t.Fatalf("jittered backoff %v out of range", d)
		}
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Millisecond,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	calls := 0
	_, err := Retry(ctx, cfg, func() (string, error) {
		calls++
		return "", errors.New("429 too many requests")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestRetry_DefaultSleepHonoursDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	cfg := RetryConfig{MaxAttempts: 2, InitialBackoff: time.Hour, MaxBackoff: time.Hour}

	start := time.Now()
	_, err := Retry(ctx, cfg, func() (int, error) { return 0, errors.New("boom") })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("sleep did not stop at the context deadline")
	}
}

func TestIsRateLimitError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Rate Limit reached for model"), true},
		{errors.New("RATE LIMIT"), true},
		{errors.New(`gemini: HTTP 429: {"error":"quota"}`), true},
		{errors.New("status 429"), true},
		{errors.New("invalid api key"), false},
		{errors.New("rate_limit exceeded"), false},
		{context.DeadlineExceeded, false},
	}
	for _, tc := range tests {
		if got := IsRateLimitError(tc.err); got != tc.want {
			t.Errorf("IsRateLimitError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestRetryPolicy_DefaultsAndValidate(t *testing.T) {
	var p RetryPolicy
	p.ApplyDefaults()
	if p != DefaultRetryPolicy() {
		t.Errorf("ApplyDefaults = %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Minute, MaxDelay: time.Second, BackoffMultiplier: 2}
	if err := bad.Validate(); err == nil {
		t.Error("expected error when max_delay < base_delay")
	}
}
