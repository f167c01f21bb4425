package provider

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/resilience"
)

func echo() RequestResponse[string, string] {
	return Func("echo", func(_ context.Context, in string) (string, error) {
		return "echo:" + in, nil
	})
}

func tag(label string, order *[]string) Middleware[string, string] {
	return func(inner RequestResponse[string, string]) RequestResponse[string, string] {
		return Func(inner.Name(), func(ctx context.Context, in string) (string, error) {
			*order = append(*order, label)
			return inner.Execute(ctx, in)
		})
	}
}

func TestFunc(t *testing.T) {
	p := echo()
	if p.Name() != "echo" || !p.IsAvailable(context.Background()) {
		t.Fatal("unexpected provider metadata")
	}
	out, err := p.Execute(context.Background(), "hi")
	if err != nil || out != "echo:hi" {
		t.Errorf("Execute = %q, %v", out, err)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	p := Chain(tag("a", &order), tag("b", &order), tag("c", &order))(echo())
	if _, err := p.Execute(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if strings.Join(order, "") != "abc" {
		t.Errorf("expected outermost first, got %v", order)
	}
}

func TestWithLogging_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	failing := Func("groq", func(context.Context, string) (string, error) {
		return "", errors.New("HTTP 429")
	})
	p := WithLogging[string, string](logger.NewWriter(&buf, "test"))(failing)

	if _, err := p.Execute(context.Background(), "x"); err == nil {
		t.Fatal("expected error to pass through")
	}
	if !strings.Contains(buf.String(), "provider call failed") || !strings.Contains(buf.String(), "HTTP 429") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestWithResilience_EmptyIsPassthrough(t *testing.T) {
	p := echo()
	if got := WithResilience(p, ResilienceConfig{}); got != p {
		t.Error("expected the same provider for an empty config")
	}
}

func TestWithResilience_BulkheadCapsConcurrency(t *testing.T) {
	var inFlight, peak int32
	slow := Func("slow", func(context.Context, string) (string, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return "ok", nil
	})
	p := WithResilience(slow, ResilienceConfig{
		Bulkhead: &resilience.BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second},
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Execute(context.Background(), "x"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if peak != 1 {
		t.Errorf("expected serialized calls, peak=%d", peak)
	}
}

func TestWithResilience_ProviderErrorUnchanged(t *testing.T) {
	cause := errors.New("rate limit reached for model")
	failing := Func("groq", func(context.Context, string) (string, error) { return "", cause })
	p := WithResilience(failing, ResilienceConfig{
		Bulkhead:    &resilience.BulkheadConfig{MaxConcurrent: 2},
		RateLimiter: &resilience.RateLimiterConfig{Rate: 100, Burst: 10},
	})

	_, err := p.Execute(context.Background(), "x")
	if err != cause {
		t.Errorf("expected provider error unchanged, got %v", err)
	}
}

func TestWithResilience_RateLimitWaitCancelled(t *testing.T) {
	p := WithResilience(echo(), ResilienceConfig{
		RateLimiter: &resilience.RateLimiterConfig{Rate: 0.001, Burst: 1},
	})
	if _, err := p.Execute(context.Background(), "first"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Execute(ctx, "second")
	if !apperrors.HasCode(err, apperrors.ErrCodeTimeout) {
		t.Errorf("expected TIMEOUT app error, got %v", err)
	}
}
