package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nyayagpt/nyaya/llm"
	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/provider"
)

// scriptedLLM replies with a fixed sequence and records every request.
type scriptedLLM struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []llm.CompletionRequest
}

func (s *scriptedLLM) provider() provider.RequestResponse[llm.CompletionRequest, llm.CompletionResponse] {
	return provider.Func("scripted", func(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.requests = append(s.requests, req)
		if s.err != nil {
			return llm.CompletionResponse{}, s.err
		}
		if len(s.replies) == 0 {
			return llm.CompletionResponse{}, errors.New("script exhausted")
		}
		reply := s.replies[0]
		s.replies = s.replies[1:]
		return llm.CompletionResponse{Content: reply}, nil
	})
}

func testAgent(tools ...Tool) Agent {
	return Agent{
		Role:      "IPC Section Agent",
		Goal:      "Find the applicable IPC sections.",
		Backstory: "You know the Indian Penal Code well.",
		Tools:     tools,
	}
}

func TestPersona(t *testing.T) {
	a := testAgent()
	p := a.Persona()
	if !strings.HasPrefix(p, "You are IPC Section Agent.") {
		t.Errorf("unexpected persona start: %q", p)
	}
	if !strings.Contains(p, "Find the applicable IPC sections.") {
		t.Errorf("persona missing goal: %q", p)
	}
	if strings.Contains(p, markerAction) {
		t.Errorf("persona without tools should not describe the tool protocol: %q", p)
	}

	withTool := a.WithTools(NewTool("Multilingual IPC Search", "search IPC", nil))
	if !strings.Contains(withTool.Persona(), "Multilingual IPC Search") {
		t.Error("persona with tools should list them")
	}
	if len(a.Tools) != 0 {
		t.Error("WithTools must not mutate the receiver")
	}
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  step
	}{
		{"plain text", "  just an answer ", step{final: "just an answer"}},
		{"final answer", "Thought: done\nFinal Answer: Section 420", step{final: "Section 420"}},
		{
			"action",
			"Thought: search\nAction: Multilingual IPC Search\nAction Input: \"cheating [english]\"",
			step{tool: "Multilingual IPC Search", input: "cheating [english]", isTool: true},
		},
		{
			"action with hallucinated observation",
			"Action: Search\nAction Input: theft\nObservation: made up",
			step{tool: "Search", input: "theft", isTool: true},
		},
		{"final wins over action", "Action: Search\nAction Input: x\nFinal Answer: ok", step{final: "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseStep(tt.reply); got != tt.want {
				t.Errorf("parseStep() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLLMExecutor_NoTools(t *testing.T) {
	s := &scriptedLLM{replies: []string{"```json\n{\"case_type\":\"Theft\"}\n```"}}
	e := NewLLMExecutor(s.provider(), WithLogger(logger.NewNop()))

	out, err := e.Execute(context.Background(), testAgent(), "classify this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "```json\n{\"case_type\":\"Theft\"}\n```" {
		t.Errorf("expected reply verbatim, got %q", out)
	}

	req := s.requests[0]
	if req.SystemPrompt == "" || req.Messages[0].Content != "classify this" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestLLMExecutor_ToolLoop(t *testing.T) {
	var gotInput string
	search := NewTool("Multilingual IPC Search", "search", func(_ context.Context, in string) (string, error) {
		gotInput = in
		return `[{"section":"379"}]`, nil
	})
	s := &scriptedLLM{replies: []string{
		"Action: Multilingual IPC Search\nAction Input: theft [english]",
		"Final Answer: [{\"section\":\"379\"}]",
	}}
	e := NewLLMExecutor(s.provider(), WithLogger(logger.NewNop()))

	out, err := e.Execute(context.Background(), testAgent(search), "find sections")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `[{"section":"379"}]` {
		t.Errorf("unexpected final answer %q", out)
	}
	if gotInput != "theft [english]" {
		t.Errorf("tool input = %q", gotInput)
	}

	second := s.requests[1].Messages
	if len(second) != 3 || !strings.HasPrefix(second[2].Content, "Observation: [{") {
		t.Errorf("expected observation fed back, got %+v", second)
	}
}

func TestLLMExecutor_ToolErrorIsObservation(t *testing.T) {
	failing := NewTool("Send Lawyer Email", "email", func(context.Context, string) (string, error) {
		return "", errors.New("smtp down")
	})
	s := &scriptedLLM{replies: []string{
		"Action: Send Lawyer Email\nAction Input: x",
		"Action: Unknown Tool\nAction Input: y",
		"Final Answer: could not send",
	}}
	e := NewLLMExecutor(s.provider(), WithLogger(logger.NewNop()))

	out, err := e.Execute(context.Background(), testAgent(failing), "notify")
	if err != nil {
		t.Fatalf("tool failures must not fail the call: %v", err)
	}
	if out != "could not send" {
		t.Errorf("unexpected output %q", out)
	}
	if msg := s.requests[1].Messages[2].Content; !strings.Contains(msg, "Tool error: smtp down") {
		t.Errorf("expected tool error observation, got %q", msg)
	}
	if msg := s.requests[2].Messages[4].Content; !strings.Contains(msg, "does not exist") {
		t.Errorf("expected unknown tool observation, got %q", msg)
	}
}

func TestLLMExecutor_IterationLimit(t *testing.T) {
	tool := NewTool("Search", "s", func(context.Context, string) (string, error) { return "r", nil })
	s := &scriptedLLM{replies: []string{
		"Action: Search\nAction Input: a",
		"Action: Search\nAction Input: b",
		"Final Answer: forced",
	}}
	e := NewLLMExecutor(s.provider(), WithMaxIterations(2), WithLogger(logger.NewNop()))

	out, err := e.Execute(context.Background(), testAgent(tool), "go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "forced" {
		t.Errorf("unexpected output %q", out)
	}
	if len(s.requests) != 3 {
		t.Errorf("expected 3 model calls, got %d", len(s.requests))
	}
}

func TestLLMExecutor_ProviderErrorUnchanged(t *testing.T) {
	sentinel := errors.New("status 429: rate limit reached")
	s := &scriptedLLM{err: sentinel}
	e := NewLLMExecutor(s.provider(), WithLogger(logger.NewNop()))

	_, err := e.Execute(context.Background(), testAgent(), "x")
	if !errors.Is(err, sentinel) {
		t.Errorf("expected provider error unchanged, got %v", err)
	}
}

func TestExecutorFunc(t *testing.T) {
	var e Executor = ExecutorFunc(func(_ context.Context, a Agent, prompt string) (string, error) {
		return a.Role + ":" + prompt, nil
	})
	out, _ := e.Execute(context.Background(), Agent{Role: "r"}, "p")
	if out != "r:p" {
		t.Errorf("got %q", out)
	}
}
