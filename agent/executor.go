package agent

import (
	"context"
	"fmt"

	"github.com/nyayagpt/nyaya/llm"
	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/observability"
	"github.com/nyayagpt/nyaya/provider"
)

// Executor turns a persona and a rendered prompt into text.
type Executor interface {
	Execute(ctx context.Context, a Agent, prompt string) (string, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, a Agent, prompt string) (string, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, a Agent, prompt string) (string, error) {
	return f(ctx, a, prompt)
}

// DefaultMaxIterations bounds the tool-use loop of LLMExecutor.
const DefaultMaxIterations = 6

// LLMExecutor runs agents against a chat completion provider. Agents with
// tools go through the Action / Observation loop until the model gives a
// Final Answer or MaxIterations model calls have been made.
type LLMExecutor struct {
	llm           provider.RequestResponse[llm.CompletionRequest, llm.CompletionResponse]
	maxIterations int
	log           *logger.Logger
}

// Option configures an LLMExecutor.
type Option func(*LLMExecutor)

// WithMaxIterations overrides DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(e *LLMExecutor) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithLogger sets the executor's logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *LLMExecutor) { e.log = l }
}

// NewLLMExecutor creates an executor over any chat completion provider,
// including one wrapped in provider middleware.
func NewLLMExecutor(p provider.RequestResponse[llm.CompletionRequest, llm.CompletionResponse], opts ...Option) *LLMExecutor {
	e := &LLMExecutor{
		llm:           p,
		maxIterations: DefaultMaxIterations,
		log:           logger.WithComponent("agent"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute implements Executor. Provider errors are returned unchanged so the
// caller can classify them. Tool failures are reported back to the model as
// observations and never end the call.
func (e *LLMExecutor) Execute(ctx context.Context, a Agent, prompt string) (string, error) {
	req := llm.CompletionRequest{
		SystemPrompt: a.Persona(),
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	}
	log := e.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldRole, a.Role))

	for i := 1; ; i++ {
		resp, err := e.llm.Execute(ctx, req)
		if err != nil {
			return "", err
		}

		st := parseStep(resp.Content)
		if !st.isTool || len(a.Tools) == 0 {
			return st.final, nil
		}
		if i >= e.maxIterations {
			log.Warn("tool iteration limit reached, forcing final answer", logger.Fields("iterations", i))
			return e.forceFinal(ctx, req, resp.Content)
		}

		observation := e.callTool(ctx, a, st, log)
		req.Messages = append(req.Messages,
			llm.Message{Role: llm.RoleAssistant, Content: resp.Content},
			llm.Message{Role: llm.RoleUser, Content: markerObservation + " " + observation},
		)
	}
}

func (e *LLMExecutor) callTool(ctx context.Context, a Agent, st step, log *logger.Logger) string {
	tool, ok := a.Tool(st.tool)
	if !ok {
		log.Warn("agent requested unknown tool", logger.Fields("tool", st.tool))
		return fmt.Sprintf("Tool %q does not exist. Available tools: %v", st.tool, a.ToolNames())
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanToolCall)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrRole, a.Role)
	observability.SetSpanAttribute(ctx, observability.AttrTool, tool.Name())

	out, err := tool.Call(ctx, st.input)
	if err != nil {
		observability.SetSpanError(ctx, err)
		log.Warn("tool call failed", logger.Fields("tool", tool.Name(), logger.FieldError, err.Error()))
		return "Tool error: " + err.Error()
	}
	log.Debug("tool call completed", logger.Fields("tool", tool.Name(), "chars", len(out)))
	return out
}

func (e *LLMExecutor) forceFinal(ctx context.Context, req llm.CompletionRequest, last string) (string, error) {
	req.Messages = append(req.Messages,
		llm.Message{Role: llm.RoleAssistant, Content: last},
		llm.Message{Role: llm.RoleUser, Content: "You cannot use any more tools. Reply now with " + markerFinalAnswer + " followed by your complete answer."},
	)
	resp, err := e.llm.Execute(ctx, req)
	if err != nil {
		return "", err
	}
	st := parseStep(resp.Content)
	if st.isTool {
		return "", fmt.Errorf("agent kept requesting tools after the iteration limit")
	}
	return st.final, nil
}
