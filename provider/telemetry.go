package provider

import (
	"context"
	"time"

	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/observability"
	"github.com/nyayagpt/nyaya/resilience"
)

// Call outcomes recorded by WithTracing and WithMetrics. A rate-limited
// call is the one the pipeline retry reacts to, so it is counted apart
// from other failures.
const (
	outcomeOK          = "ok"
	outcomeRateLimited = "rate_limited"
	outcomeError       = "error"
)

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case resilience.IsRateLimitError(err):
		return outcomeRateLimited
	default:
		return outcomeError
	}
}

// WithTracing opens a model.call span per Execute, tagged with service,
// the provider name and, inside a pipeline, the run id.
func WithTracing[I, O any](service string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &traced[I, O]{inner: inner, service: service}
	}
}

type traced[I, O any] struct {
	inner   RequestResponse[I, O]
	service string
}

func (t *traced[I, O]) Name() string                         { return t.inner.Name() }
func (t *traced[I, O]) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *traced[I, O]) Execute(ctx context.Context, input I) (O, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanModelCall)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrServiceName, t.service)
	observability.SetSpanAttribute(ctx, observability.AttrProvider, t.inner.Name())
	if id := logger.RunIDFromContext(ctx); id != "" {
		observability.SetSpanAttribute(ctx, observability.AttrRunID, id)
	}

	out, err := t.inner.Execute(ctx, input)
	if err != nil {
		observability.SetSpanAttribute(ctx, observability.AttrRateLimited, outcome(err) == outcomeRateLimited)
		observability.SetSpanError(ctx, err)
	}
	return out, err
}

// WithMetrics counts calls by outcome and records their latency. Failures
// are also counted as errors of type "rate_limited" or "error". A nil
// metrics disables recording.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		if metrics == nil {
			return inner
		}
		return &measured[I, O]{inner: inner, metrics: metrics}
	}
}

type measured[I, O any] struct {
	inner   RequestResponse[I, O]
	metrics *observability.Metrics
}

func (m *measured[I, O]) Name() string                         { return m.inner.Name() }
func (m *measured[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *measured[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	out, err := m.inner.Execute(ctx, input)

	status := outcome(err)
	if err != nil {
		m.metrics.RecordError(ctx, status, m.inner.Name())
	}
	m.metrics.RecordOperation(ctx, m.inner.Name(), "execute", status, time.Since(start))
	return out, err
}
