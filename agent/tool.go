package agent

import (
	"context"
	"fmt"
	"strings"
)

// Tool is an external capability an agent may invoke while working, such as
// semantic search or sending an email. Input and output are plain text.
type Tool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
}

// ToolFunc is the call signature wrapped by NewTool.
type ToolFunc func(ctx context.Context, input string) (string, error)

// NewTool builds a Tool from a function.
func NewTool(name, description string, fn ToolFunc) Tool {
	return &funcTool{name: name, description: description, fn: fn}
}

type funcTool struct {
	name        string
	description string
	fn          ToolFunc
}

func (t *funcTool) Name() string        { return t.name }
func (t *funcTool) Description() string { return t.description }

func (t *funcTool) Call(ctx context.Context, input string) (string, error) {
	return t.fn(ctx, input)
}

// Markers of the tool-use text protocol.
const (
	markerAction      = "Action:"
	markerActionInput = "Action Input:"
	markerObservation = "Observation:"
	markerFinalAnswer = "Final Answer:"
)

func toolInstructions(tools []Tool) string {
	var b strings.Builder
	b.WriteString("You have access to the following tools:\n")
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
		fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
	}
	b.WriteString("\nTo use a tool, reply with exactly:\n")
	fmt.Fprintf(&b, "%s <one of [%s]>\n", markerAction, strings.Join(names, ", "))
	fmt.Fprintf(&b, "%s <the input for the tool>\n", markerActionInput)
	fmt.Fprintf(&b, "You will then receive an %s with the result.\n", markerObservation)
	fmt.Fprintf(&b, "When you have everything you need, reply with:\n%s <your complete answer>", markerFinalAnswer)
	return b.String()
}

// step is one parsed model turn.
type step struct {
	final  string
	tool   string
	input  string
	isTool bool
}

// parseStep interprets a model reply. A Final Answer wins over an action in
// the same reply. Replies with neither marker are treated as final.
func parseStep(reply string) step {
	if i := strings.LastIndex(reply, markerFinalAnswer); i >= 0 {
		return step{final: strings.TrimSpace(reply[i+len(markerFinalAnswer):])}
	}

	ai := strings.Index(reply, markerAction)
	ii := strings.Index(reply, markerActionInput)
	if ai < 0 || ii < 0 || ii < ai {
		return step{final: strings.TrimSpace(reply)}
	}

	tool := strings.TrimSpace(reply[ai+len(markerAction) : ii])
	input := reply[ii+len(markerActionInput):]
	if oi := strings.Index(input, markerObservation); oi >= 0 {
		input = input[:oi]
	}
	return step{
		tool:   tool,
		input:  strings.Trim(strings.TrimSpace(input), `"`),
		isTool: true,
	}
}
