package dag

import (
	"context"
	"time"

	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/observability"
	"github.com/nyayagpt/nyaya/resilience"
)

// RetryExecutor reruns a whole pipeline invocation when it fails with a
// rate-limit error. Each attempt is a fresh Run; nothing carries over.
// Any other error is returned immediately, and after the last attempt the
// last error is returned unchanged.
type RetryExecutor struct {
	Engine *Engine
	Policy resilience.RetryPolicy
	// Sleep replaces the backoff wait, mainly in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each sleep, after the warning is logged.
	OnRetry func(attempt int, err error, delay time.Duration)
	Logger  *logger.Logger
	Metrics *observability.Metrics
}

// NewRetryExecutor wraps engine with the default pipeline policy.
func NewRetryExecutor(engine *Engine) *RetryExecutor {
	return &RetryExecutor{Engine: engine, Policy: resilience.DefaultRetryPolicy()}
}

// Run executes p with retries.
func (r *RetryExecutor) Run(ctx context.Context, p *Pipeline, inputs map[string]string) (*Result, error) {
	policy := r.Policy
	policy.ApplyDefaults()

	log := r.Logger
	if log == nil {
		log = logger.WithComponent("dag.retry")
	}
	log = log.WithFields(logger.Fields(logger.FieldPipeline, p.Name()))

	cfg := policy.RetryConfig()
	cfg.Sleep = r.Sleep
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn("pipeline rate limited, retrying", logger.Fields(
			logger.FieldAttempt, attempt,
			logger.FieldDelay, delay.String(),
			logger.FieldError, err.Error(),
		))
		if r.Metrics != nil {
			r.Metrics.RecordRetry(ctx, p.Name())
		}
		if r.OnRetry != nil {
			r.OnRetry(attempt, err, delay)
		}
	}

	return resilience.Retry(ctx, cfg, func() (*Result, error) {
		return r.Engine.Run(ctx, p, inputs)
	})
}
