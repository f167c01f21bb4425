// Package observability wires OpenTelemetry tracing and metrics for the
// HTTP layer, the LLM providers and the pipeline engine.
//
//	shutdown, err := observability.Setup(ctx, cfg)
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanNodeRun)
//	defer span.End()
//
// When export is disabled the global no-op providers stay installed, so
// StartSpan and NewMetrics are always safe to call.
package observability
