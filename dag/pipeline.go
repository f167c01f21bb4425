package dag

import (
	"text/template"
)

// PromptDecorator post-processes every rendered prompt of a pipeline.
// It receives the invocation inputs, e.g. to append a language directive.
type PromptDecorator func(prompt string, inputs map[string]string) string

// Pipeline is a validated, immutable set of task nodes. It is safe to run
// concurrently; per-invocation state lives in a Run.
type Pipeline struct {
	name       string
	nodes      []TaskNode
	index      map[string]int
	levels     [][]string
	templates  map[string]*template.Template
	terminal   string
	decorators []PromptDecorator
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Terminal returns the id of the node whose output is the artifact.
func (p *Pipeline) Terminal() string { return p.terminal }

// Node returns the node with the given id.
func (p *Pipeline) Node(id string) (TaskNode, bool) {
	i, ok := p.index[id]
	if !ok {
		return TaskNode{}, false
	}
	return p.nodes[i], true
}

// Nodes returns the nodes in declaration order.
func (p *Pipeline) Nodes() []TaskNode {
	out := make([]TaskNode, len(p.nodes))
	copy(out, p.nodes)
	return out
}

// NodeIDs returns the node ids in declaration order.
func (p *Pipeline) NodeIDs() []string {
	ids := make([]string, len(p.nodes))
	for i, n := range p.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Levels returns the execution levels computed at build time.
func (p *Pipeline) Levels() [][]string {
	out := make([][]string, len(p.levels))
	for i, l := range p.levels {
		out[i] = append([]string(nil), l...)
	}
	return out
}
