package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nyayagpt/nyaya/agent"
	"github.com/nyayagpt/nyaya/dag"
	"github.com/nyayagpt/nyaya/legal"
	"github.com/nyayagpt/nyaya/llm"
	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/notify"
	"github.com/nyayagpt/nyaya/observability"
	"github.com/nyayagpt/nyaya/provider"
	"github.com/nyayagpt/nyaya/search"
	"github.com/nyayagpt/nyaya/server"
	"github.com/nyayagpt/nyaya/server/endpoint"
	"github.com/nyayagpt/nyaya/transcription"
	"github.com/nyayagpt/nyaya/transcription/whisper"
	"github.com/nyayagpt/nyaya/util"
)

// App holds the wired service. Build it with New, then either Serve it or
// use Service and Indexer directly from a one-shot command.
type App struct {
	Name    string
	Version string
	Cfg     *Config
	Logger  *logger.Logger

	// Components collects what was wired for the startup summary.
	Components *logger.ComponentRegistry

	Service     *legal.Service
	Indexer     *search.Indexer
	Transcriber *transcription.Transcriber
	Server      *server.Server

	llm      llm.Provider
	embedder *search.LazyEmbedder
	store    *search.WeaviateStore
	notifier *notify.SMTPNotifier
	metrics  *observability.Metrics

	gracefulTimeout time.Duration
	onStop          []Hook
}

// New applies defaults to cfg, validates it and wires every component. No
// network call is made; backends are contacted on first use.
func New(ctx context.Context, cfg *Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	a := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		Components:      logger.NewComponentRegistry(),
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		a.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		a.Logger = o.logger
	} else {
		logger.Init(cfg.Logging, cfg.Name)
		a.Logger = logger.GetGlobalLogger()
	}

	shutdown, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	a.OnStop(Hook(shutdown))
	if a.metrics, err = observability.NewMetrics(observability.Meter(cfg.Name)); err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}

	if err := a.wireSearch(); err != nil {
		return nil, err
	}
	a.notifier = notify.NewSMTPNotifier(cfg.SMTP)
	a.Components.RegisterInfrastructure("SMTP", "notify", configured(a.notifier.Configured()),
		fmt.Sprintf("%s:%d as %s", cfg.SMTP.Host, cfg.SMTP.Port, util.MaskSecret(cfg.SMTP.User, 3)))

	executor := o.executor
	if executor == nil {
		if executor, err = a.wireExecutor(); err != nil {
			return nil, err
		}
	}

	if err := a.wireService(executor); err != nil {
		return nil, err
	}
	if err := a.wireTranscription(); err != nil {
		return nil, err
	}
	a.wireServer()
	return a, nil
}

func (a *App) wireSearch() error {
	cfg := a.Cfg
	store, err := search.NewWeaviateStore(cfg.Search)
	if err != nil {
		return err
	}
	a.store = store
	a.embedder = search.NewLazyEmbedder(func() (llm.Embedder, error) {
		return newEmbedder(cfg.Embedding)
	})
	a.Indexer = search.NewIndexer(store, a.embedder, cfg.Search)
	a.Components.RegisterInfrastructure("Weaviate", "vector store", "lazy", cfg.Search.URL)
	a.Components.RegisterInfrastructure("Embeddings", cfg.Embedding.Dialect, "lazy", cfg.Embedding.Model)
	return nil
}

// wireExecutor builds the agent executor: the chat model behind admission
// control and provider middleware, then node-level decorators.
func (a *App) wireExecutor() (agent.Executor, error) {
	cfg := a.Cfg
	base, err := newChatModel(cfg.LLM)
	if err != nil {
		return nil, err
	}
	a.llm = provider.Chain(
		provider.WithLogging[llm.CompletionRequest, llm.CompletionResponse](a.Logger.WithComponent("llm")),
		provider.WithTracing[llm.CompletionRequest, llm.CompletionResponse](cfg.Name),
		provider.WithMetrics[llm.CompletionRequest, llm.CompletionResponse](a.metrics),
	)(provider.WithResilience(base, cfg.LLM.Resilience()))
	a.Components.RegisterInfrastructure("LLM", cfg.LLM.Dialect, "active", cfg.LLM.Model)

	var exec agent.Executor = agent.NewLLMExecutor(a.llm,
		agent.WithMaxIterations(cfg.Pipeline.MaxIterations),
		agent.WithLogger(a.Logger.WithComponent("agent")),
	)
	exec = dag.WithLogging(exec, a.Logger.WithComponent("dag"))
	exec = dag.WithMetrics(exec, a.metrics)
	return dag.WithTracing(exec), nil
}

func (a *App) wireService(executor agent.Executor) error {
	cfg := a.Cfg
	ipc := search.NewSearcher(a.store, a.embedder, cfg.Search.IPCCollection, cfg.Search.TopK)
	precedents := search.NewSearcher(a.store, a.embedder, cfg.Search.PrecedentCollection, cfg.Search.TopK)
	agents := legal.NewAgents(legal.Tools{
		IPCSearch:       search.IPCTool(ipc),
		PrecedentSearch: search.PrecedentTool(precedents),
		Email:           notify.Tool(a.notifier),
	})

	var (
		pipelines *legal.Pipelines
		err       error
	)
	if cfg.Pipeline.DefinitionsDir != "" {
		pipelines, err = legal.LoadPipelines(dag.NewFileDefinitionLoader(cfg.Pipeline.DefinitionsDir), agents)
	} else {
		pipelines, err = legal.BuildPipelines(agents)
	}
	if err != nil {
		return err
	}
	for _, p := range []*dag.Pipeline{pipelines.EndToEnd, pipelines.Advisory, pipelines.Drafting} {
		a.Components.RegisterPipeline(p.Name(), p.NodeIDs(), p.Terminal())
	}

	engine := &dag.Engine{
		Executor:    executor,
		MaxParallel: cfg.Pipeline.MaxParallel,
		Logger:      a.Logger.WithComponent("dag"),
		Metrics:     a.metrics,
	}
	runner := dag.NewRetryExecutor(engine)
	runner.Policy = cfg.Retry
	runner.Logger = a.Logger.WithComponent("dag.retry")
	runner.Metrics = a.metrics

	a.Service = legal.NewService(runner, pipelines, a.notifier)
	return nil
}

func (a *App) wireTranscription() error {
	cfg := a.Cfg.Transcription
	if !cfg.Enabled {
		a.Components.RegisterInfrastructure("Whisper", "transcription", "disabled", "")
		return nil
	}
	p, err := whisper.NewProvider(cfg.Config)
	if err != nil {
		return err
	}
	a.Transcriber = transcription.NewTranscriber(p)
	a.Components.RegisterInfrastructure("Whisper", "transcription", "active", cfg.URL)
	return nil
}

func (a *App) wireServer() {
	a.Server = server.New(a.Cfg.Server, a.Logger, server.WithMetrics(a.metrics))
	a.Server.RegisterDefaultEndpoints(a.Name, a.HealthCheckers()...)

	var tr endpoint.Transcriber
	if a.Transcriber != nil {
		tr = a.Transcriber
	}
	endpoint.NewLegal(a.Service, tr).Register(a.Server.GinEngine())
	a.Server.TrackRoutes(a.Components)
}

// Serve starts the HTTP server and blocks until a shutdown signal or ctx
// is done, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	a.Components.LogSummary(a.Logger)
	if err := a.Server.Start(ctx); err != nil {
		return err
	}
	a.OnStop(a.Server.Stop)

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.Shutdown(context.Background())
}

// RunTask runs a finite task, canceling it on SIGINT or SIGTERM, then shuts
// down.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	taskCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	taskErr := task(taskCtx)
	if stopErr := a.Shutdown(context.Background()); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// WaitForSignal blocks until an interrupt or terminate signal, or until ctx
// is done.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown runs the stop hooks in reverse registration order within the
// graceful timeout. Every hook runs; their errors are joined.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(ctx, a.gracefulTimeout)
	defer cancel()

	var errs []error
	for i := len(a.onStop) - 1; i >= 0; i-- {
		if err := a.onStop[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.onStop = nil
	if err := errors.Join(errs...); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	a.Logger.Info("Application stopped")
	return nil
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
