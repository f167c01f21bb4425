package dag

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/nyayagpt/nyaya/errors"
)

// Builder assembles a Pipeline. Nothing is checked until Build.
type Builder struct {
	name       string
	nodes      []TaskNode
	decorators []PromptDecorator
}

// NewBuilder starts a pipeline with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Add appends nodes in declaration order.
func (b *Builder) Add(nodes ...TaskNode) *Builder {
	b.nodes = append(b.nodes, nodes...)
	return b
}

// Decorate appends prompt decorators, applied in order after rendering.
func (b *Builder) Decorate(decorators ...PromptDecorator) *Builder {
	b.decorators = append(b.decorators, decorators...)
	return b
}

// Build validates the nodes and returns an immutable Pipeline. Checks run
// in this order: ids, dangling references, cycles, forward references,
// templates, output contracts, terminal. The first failure is returned as
// a GRAPH_DEFINITION error.
func (b *Builder) Build() (*Pipeline, error) {
	fail := func(format string, args ...any) (*Pipeline, error) {
		return nil, errors.GraphDefinition(b.name, fmt.Sprintf(format, args...))
	}

	if len(b.nodes) == 0 {
		return fail("pipeline has no nodes")
	}

	index := make(map[string]int, len(b.nodes))
	for i, n := range b.nodes {
		if strings.TrimSpace(n.ID) == "" {
			return fail("node at position %d has an empty id", i)
		}
		if _, dup := index[n.ID]; dup {
			return fail("duplicate node id %q", n.ID)
		}
		index[n.ID] = i
	}

	for _, n := range b.nodes {
		seen := make(map[string]bool, len(n.DependsOn))
		for _, dep := range n.DependsOn {
			if _, ok := index[dep]; !ok {
				return fail("node %q depends on undeclared node %q", n.ID, dep)
			}
			if seen[dep] {
				return fail("node %q lists dependency %q twice", n.ID, dep)
			}
			seen[dep] = true
		}
	}

	levels, err := BuildLevels(b.nodes)
	if err != nil {
		return fail("%v", err)
	}

	for i, n := range b.nodes {
		for _, dep := range n.DependsOn {
			if index[dep] >= i {
				return fail("node %q depends on %q, which is declared after it", n.ID, dep)
			}
		}
	}

	templates := make(map[string]*template.Template, len(b.nodes))
	for _, n := range b.nodes {
		if strings.TrimSpace(n.Prompt) == "" {
			return fail("node %q has an empty prompt", n.ID)
		}
		tmpl, err := parseTemplate(n.ID, n.Prompt)
		if err != nil {
			return fail("node %q: %v", n.ID, err)
		}
		templates[n.ID] = tmpl
	}

	for _, n := range b.nodes {
		if err := n.Output.Validate(); err != nil {
			return fail("node %q: %v", n.ID, err)
		}
	}

	terminal, err := findTerminal(b.nodes)
	if err != nil {
		return fail("%v", err)
	}

	nodes := make([]TaskNode, len(b.nodes))
	for i, n := range b.nodes {
		n.DependsOn = append([]string(nil), n.DependsOn...)
		nodes[i] = n
	}

	return &Pipeline{
		name:       b.name,
		nodes:      nodes,
		index:      index,
		levels:     levels,
		templates:  templates,
		terminal:   terminal,
		decorators: append([]PromptDecorator(nil), b.decorators...),
	}, nil
}

// findTerminal returns the single node marked Terminal, or else the single
// node nothing depends on.
func findTerminal(nodes []TaskNode) (string, error) {
	var marked []string
	for _, n := range nodes {
		if n.Terminal {
			marked = append(marked, n.ID)
		}
	}
	switch len(marked) {
	case 1:
		return marked[0], nil
	case 0:
	default:
		return "", fmt.Errorf("several nodes are marked terminal: [%s]", strings.Join(marked, ", "))
	}

	hasDependents := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			hasDependents[dep] = true
		}
	}
	var sinks []string
	for _, n := range nodes {
		if !hasDependents[n.ID] {
			sinks = append(sinks, n.ID)
		}
	}
	if len(sinks) != 1 {
		return "", fmt.Errorf("ambiguous terminal: nodes [%s] have no dependents and none is marked terminal", strings.Join(sinks, ", "))
	}
	return sinks[0], nil
}
