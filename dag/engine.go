package dag

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nyayagpt/nyaya/agent"
	"github.com/nyayagpt/nyaya/contract"
	"github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/observability"
)

// Engine executes pipelines in dependency order.
type Engine struct {
	// Executor runs each node's agent. Required.
	Executor agent.Executor
	// MaxParallel limits concurrent nodes per batch (0 = unlimited).
	MaxParallel int
	// Logger defaults to the "dag" component logger.
	Logger *logger.Logger
	// Metrics is optional.
	Metrics *observability.Metrics
}

// Result is the outcome of a successful run.
type Result struct {
	RunID    string
	Pipeline string
	// Artifact is the raw output of the terminal node.
	Artifact string
	// Outputs holds every node's raw output keyed by node id.
	Outputs map[string]string
	// Parsed holds the checked output of every node that met its contract.
	Parsed map[string]*contract.Parsed
	// Violations lists CONTRACT_VIOLATION errors for structured outputs
	// that could not be parsed. They never abort a run.
	Violations []error
	Nodes      map[string]Status
	Duration   time.Duration
}

// ParsedOutput returns the checked output of node id.
func (r *Result) ParsedOutput(id string) (*contract.Parsed, bool) {
	p, ok := r.Parsed[id]
	return p, ok
}

// Run executes p once with inputs. The first failing node aborts the run
// with a PIPELINE_EXECUTION error that wraps the node's EXECUTOR error.
func (e *Engine) Run(ctx context.Context, p *Pipeline, inputs map[string]string) (*Result, error) {
	if e.Executor == nil {
		return nil, errors.GraphDefinition(p.Name(), "engine has no executor")
	}

	run := NewRun(p, inputs)
	ctx = logger.ContextWithRunID(ctx, run.ID)
	ctx, span := observability.StartSpan(ctx, observability.SpanPipelineRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrPipeline, p.Name())
	observability.SetSpanAttribute(ctx, observability.AttrRunID, run.ID)

	log := e.logger().WithContext(ctx).WithFields(logger.Fields(logger.FieldPipeline, p.Name()))
	log.Info("pipeline run started", logger.Fields("nodes", len(p.nodes), "levels", len(p.levels)))

	err := e.execute(ctx, p, run, log)
	duration := time.Since(run.StartedAt)

	status := "ok"
	if err != nil {
		status = "error"
		observability.SetSpanError(ctx, err)
		log.Error("pipeline run failed", logger.Fields(logger.FieldError, err.Error(), logger.FieldDuration, duration.Milliseconds()))
	} else {
		log.Info("pipeline run completed", logger.Fields(logger.FieldDuration, duration.Milliseconds(), "violations", len(run.Violations())))
	}
	if e.Metrics != nil {
		e.Metrics.RecordRun(ctx, p.Name(), status, duration)
	}
	if err != nil {
		return nil, err
	}

	artifact, _ := contract.Artifact(run.Outputs(), p.Terminal())
	parsed := make(map[string]*contract.Parsed, len(p.nodes))
	for _, n := range p.nodes {
		if pr, ok := run.Parsed(n.ID); ok {
			parsed[n.ID] = pr
		}
	}
	return &Result{
		RunID:      run.ID,
		Pipeline:   p.Name(),
		Artifact:   artifact,
		Outputs:    run.Outputs(),
		Parsed:     parsed,
		Violations: run.Violations(),
		Nodes:      run.Statuses(),
		Duration:   duration,
	}, nil
}

func (e *Engine) execute(ctx context.Context, p *Pipeline, run *Run, log *logger.Logger) error {
	for _, level := range p.levels {
		if err := ctx.Err(); err != nil {
			return err
		}

		var batch []string
		for _, id := range level {
			node, _ := p.Node(id)
			if node.Mode == Concurrent {
				batch = append(batch, id)
				continue
			}
			if err := e.executeBatch(ctx, p, run, batch, log); err != nil {
				return err
			}
			batch = nil
			if err := e.executeNode(ctx, p, run, id, log); err != nil {
				return err
			}
		}
		if err := e.executeBatch(ctx, p, run, batch, log); err != nil {
			return err
		}
	}
	return nil
}

// executeBatch runs sibling concurrent nodes in parallel. A failure cancels
// the others and the first error is returned.
func (e *Engine) executeBatch(ctx context.Context, p *Pipeline, run *Run, ids []string, log *logger.Logger) error {
	switch len(ids) {
	case 0:
		return nil
	case 1:
		return e.executeNode(ctx, p, run, ids[0], log)
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.MaxParallel > 0 {
		g.SetLimit(e.MaxParallel)
	}
	for _, id := range ids {
		g.Go(func() error {
			return e.executeNode(gctx, p, run, id, log)
		})
	}
	return g.Wait()
}

func (e *Engine) executeNode(ctx context.Context, p *Pipeline, run *Run, id string, log *logger.Logger) error {
	node, _ := p.Node(id)
	nlog := log.WithFields(logger.Fields(logger.FieldNode, id, logger.FieldRole, node.Agent.Role))

	prompt, err := p.Render(id, run)
	if err != nil {
		run.setStatus(id, StatusFailed)
		nlog.Error("node prompt could not be rendered", logger.Fields(logger.FieldError, err.Error()))
		return errors.PipelineExecution(p.Name(), id, errors.InvalidInput("prompt", err.Error()))
	}

	run.setStatus(id, StatusRunning)
	nlog.Info("node started", logger.Fields("mode", node.Mode.String()))
	start := time.Now()

	ctx = ContextWithNode(ctx, NodeInfo{Pipeline: p.Name(), RunID: run.ID, Node: id, Role: node.Agent.Role})
	out, err := e.Executor.Execute(ctx, node.Agent, prompt)
	duration := time.Since(start)
	if err != nil {
		run.setStatus(id, StatusFailed)
		e.recordNode(ctx, p, id, "error", duration)
		nlog.Error("node failed", logger.Fields(logger.FieldError, err.Error(), logger.FieldDuration, duration.Milliseconds()))
		return errors.PipelineExecution(p.Name(), id, errors.Executor(id, node.Agent.Role, err))
	}

	parsed, violation := contract.Parse(id, out, node.Output)
	run.complete(id, out, parsed, violation)
	e.recordNode(ctx, p, id, "ok", duration)

	if violation != nil {
		nlog.Warn("node output violates its contract", logger.Fields(logger.FieldError, violation.Error()))
	} else {
		contract.Report(nlog, parsed)
	}
	nlog.Info("node completed", logger.Fields(logger.FieldDuration, duration.Milliseconds(), "chars", len(out)))
	return nil
}

func (e *Engine) recordNode(ctx context.Context, p *Pipeline, id, status string, d time.Duration) {
	if e.Metrics != nil {
		e.Metrics.RecordNode(ctx, p.Name(), id, status, d)
	}
}

func (e *Engine) logger() *logger.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logger.WithComponent("dag")
}

// Runner executes a pipeline invocation. Engine and RetryExecutor satisfy it.
type Runner interface {
	Run(ctx context.Context, p *Pipeline, inputs map[string]string) (*Result, error)
}

var (
	_ Runner = (*Engine)(nil)
	_ Runner = (*RetryExecutor)(nil)
)
