package dag

import (
	"context"
	"time"

	"github.com/nyayagpt/nyaya/agent"
	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/observability"
)

// WithTracing wraps an executor with one span per agent call, tagged with
// the node the call belongs to.
func WithTracing(next agent.Executor) agent.Executor {
	return agent.ExecutorFunc(func(ctx context.Context, a agent.Agent, prompt string) (string, error) {
		ctx, span := observability.StartSpan(ctx, observability.SpanNodeRun)
		defer span.End()

		observability.SetSpanAttribute(ctx, observability.AttrRole, a.Role)
		if info, ok := NodeFromContext(ctx); ok {
			observability.SetSpanAttribute(ctx, observability.AttrPipeline, info.Pipeline)
			observability.SetSpanAttribute(ctx, observability.AttrNode, info.Node)
			observability.SetSpanAttribute(ctx, observability.AttrRunID, info.RunID)
		}

		out, err := next.Execute(ctx, a, prompt)
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
		return out, err
	})
}

// WithMetrics wraps an executor with operation and error metrics.
func WithMetrics(next agent.Executor, metrics *observability.Metrics) agent.Executor {
	return agent.ExecutorFunc(func(ctx context.Context, a agent.Agent, prompt string) (string, error) {
		start := time.Now()
		out, err := next.Execute(ctx, a, prompt)
		duration := time.Since(start)

		status := "ok"
		if err != nil {
			status = "error"
			metrics.RecordError(ctx, "execute", a.Role)
		}
		metrics.RecordOperation(ctx, a.Role, "agent.execute", status, duration)
		return out, err
	})
}

// WithLogging wraps an executor with per-call debug logging.
func WithLogging(next agent.Executor, log *logger.Logger) agent.Executor {
	return agent.ExecutorFunc(func(ctx context.Context, a agent.Agent, prompt string) (string, error) {
		start := time.Now()
		out, err := next.Execute(ctx, a, prompt)

		fields := logger.Fields(
			logger.FieldRole, a.Role,
			logger.FieldDuration, time.Since(start).Milliseconds(),
			"prompt_chars", len(prompt),
		)
		if info, ok := NodeFromContext(ctx); ok {
			fields[logger.FieldNode] = info.Node
			fields[logger.FieldRunID] = info.RunID
		}

		if err != nil {
			fields[logger.FieldError] = err.Error()
			log.Error("agent call failed", fields)
		} else {
			fields["output_chars"] = len(out)
			log.Debug("agent call completed", fields)
		}
		return out, err
	})
}
