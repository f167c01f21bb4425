package app

import (
	"context"
	"time"

	"github.com/nyayagpt/nyaya/agent"
	"github.com/nyayagpt/nyaya/logger"
)

// Hook is a lifecycle callback run during shutdown.
type Hook func(ctx context.Context) error

// OnStop registers hooks that run during shutdown, last registered first.
func (a *App) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	executor        agent.Executor
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger. If not set, the global logger is
// initialized from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithExecutor replaces the LLM-backed agent executor, e.g. with a scripted
// one in tests. No chat model is created.
func WithExecutor(e agent.Executor) Option {
	return func(o *appOptions) {
		o.executor = e
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}
