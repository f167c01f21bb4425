package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the HTTP layer, the LLM
// providers and the pipeline engine.
type Metrics struct {
	requests     metric.Int64Counter
	requestTime  metric.Float64Histogram
	operations   metric.Int64Counter
	operationDur metric.Float64Histogram
	errors       metric.Int64Counter
	runs         metric.Int64Counter
	runTime      metric.Float64Histogram
	nodeTime     metric.Float64Histogram
	retries      metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.requests, "http.request.total", "HTTP requests by method, route and status"},
		{&m.operations, "operation.total", "Provider and agent calls by status"},
		{&m.errors, "error.total", "Errors by type and component"},
		{&m.runs, "pipeline.run.total", "Pipeline runs by pipeline and status"},
		{&m.retries, "pipeline.retry.total", "Whole-pipeline retries after a rate-limit failure"},
	}
	for _, c := range counters {
		inst, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
		*c.dst = inst
	}

	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
		desc string
	}{
		{&m.requestTime, "http.request.duration", "HTTP request latency"},
		{&m.operationDur, "operation.duration", "Provider and agent call latency"},
		{&m.runTime, "pipeline.run.duration", "Pipeline run latency including retries"},
		{&m.nodeTime, "pipeline.node.duration", "Latency of one node execution"},
	}
	for _, h := range histograms {
		inst, err := meter.Float64Histogram(h.name, metric.WithDescription(h.desc), metric.WithUnit("s"))
		if err != nil {
			return nil, fmt.Errorf("creating %s histogram: %w", h.name, err)
		}
		*h.dst = inst
	}
	return m, nil
}

func attrs(kv ...attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributes(kv...)
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	m.requests.Add(ctx, 1, attrs(attribute.String("method", method), attribute.String("route", route), attribute.Int("status", status)))
	m.requestTime.Record(ctx, d.Seconds(), attrs(attribute.String("method", method), attribute.String("route", route)))
}

// RecordOperation records one provider or agent call.
func (m *Metrics) RecordOperation(ctx context.Context, service, operation, status string, d time.Duration) {
	m.operations.Add(ctx, 1, attrs(attribute.String("service", service), attribute.String("operation", operation), attribute.String("status", status)))
	m.operationDur.Record(ctx, d.Seconds(), attrs(attribute.String("service", service), attribute.String("operation", operation)))
}

// RecordError counts an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errors.Add(ctx, 1, attrs(attribute.String("type", errType), attribute.String("component", component)))
}

// RecordRun records a finished pipeline run.
func (m *Metrics) RecordRun(ctx context.Context, pipeline, status string, d time.Duration) {
	m.runs.Add(ctx, 1, attrs(attribute.String("pipeline", pipeline), attribute.String("status", status)))
	m.runTime.Record(ctx, d.Seconds(), attrs(attribute.String("pipeline", pipeline)))
}

// RecordNode records one node execution.
func (m *Metrics) RecordNode(ctx context.Context, pipeline, node, status string, d time.Duration) {
	m.nodeTime.Record(ctx, d.Seconds(), attrs(attribute.String("pipeline", pipeline), attribute.String("node", node), attribute.String("status", status)))
}

// RecordRetry counts a whole-pipeline retry.
func (m *Metrics) RecordRetry(ctx context.Context, pipeline string) {
	m.retries.Add(ctx, 1, attrs(attribute.String("pipeline", pipeline)))
}
