package agent

import (
	"fmt"
	"strings"
)

// Agent is a fixed persona bound to a set of tools. It is a value: nodes
// hold copies, and nothing mutates an Agent during a run.
type Agent struct {
	Role      string `yaml:"role" validate:"required"`
	Goal      string `yaml:"goal" validate:"required"`
	Backstory string `yaml:"backstory"`
	Tools     []Tool `yaml:"-"`
}

// Persona renders the behavioral contract sent as the system prompt.
func (a Agent) Persona() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. %s", a.Role, a.Backstory)
	b.WriteString("\nYour personal goal is: ")
	b.WriteString(a.Goal)
	if len(a.Tools) > 0 {
		b.WriteString("\n\n")
		b.WriteString(toolInstructions(a.Tools))
	}
	return strings.TrimSpace(b.String())
}

// Tool returns the tool registered under name.
func (a Agent) Tool(name string) (Tool, bool) {
	for _, t := range a.Tools {
		if strings.EqualFold(t.Name(), strings.TrimSpace(name)) {
			return t, true
		}
	}
	return nil, false
}

// ToolNames lists the names of the agent's tools in declaration order.
func (a Agent) ToolNames() []string {
	names := make([]string, len(a.Tools))
	for i, t := range a.Tools {
		names[i] = t.Name()
	}
	return names
}

// WithTools returns a copy of a with tools appended.
func (a Agent) WithTools(tools ...Tool) Agent {
	merged := make([]Tool, 0, len(a.Tools)+len(tools))
	merged = append(merged, a.Tools...)
	a.Tools = append(merged, tools...)
	return a
}
