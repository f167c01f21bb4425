package dag

import (
	"context"
	"fmt"
	"strings"

	"github.com/nyayagpt/nyaya/agent"
	"github.com/nyayagpt/nyaya/contract"
)

// ExecutionMode says whether a node may share its level with siblings.
type ExecutionMode int

const (
	// Blocking nodes run alone, after every earlier sibling in their level.
	Blocking ExecutionMode = iota
	// Concurrent nodes run in parallel with adjacent concurrent siblings.
	Concurrent
)

func (m ExecutionMode) String() string {
	switch m {
	case Blocking:
		return "blocking"
	case Concurrent:
		return "concurrent"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode reads "blocking" or "concurrent". Empty means Blocking.
func ParseMode(s string) (ExecutionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "blocking", "sync":
		return Blocking, nil
	case "concurrent", "async":
		return Concurrent, nil
	default:
		return Blocking, fmt.Errorf("dag: unknown execution mode %q", s)
	}
}

// TaskNode is one unit of work: an agent, a prompt template, and the
// upstream nodes whose outputs the prompt may reference.
type TaskNode struct {
	// ID is unique within a pipeline and addresses the node's output in
	// dependent templates ({{.intake}}).
	ID string
	// Agent is the persona that executes the prompt.
	Agent agent.Agent
	// Prompt is a text/template. Placeholders resolve against the
	// pipeline inputs and dependency outputs.
	Prompt string
	// Output is the contract the raw output is checked against.
	Output contract.Spec
	// DependsOn lists upstream node ids, in the order their outputs are
	// appended to the prompt's context section.
	DependsOn []string
	// Mode controls sibling parallelism.
	Mode ExecutionMode
	// Terminal marks the node whose output is the pipeline artifact.
	Terminal bool
}

// NodeInfo identifies the node an executor call is made for.
type NodeInfo struct {
	Pipeline string
	RunID    string
	Node     string
	Role     string
}

type nodeInfoKey struct{}

// ContextWithNode attaches info for executor decorators.
func ContextWithNode(ctx context.Context, info NodeInfo) context.Context {
	return context.WithValue(ctx, nodeInfoKey{}, info)
}

// NodeFromContext returns the node an executor call belongs to.
func NodeFromContext(ctx context.Context) (NodeInfo, bool) {
	info, ok := ctx.Value(nodeInfoKey{}).(NodeInfo)
	return info, ok
}
