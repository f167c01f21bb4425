package dag

import (
	"fmt"
	"strings"
	"text/template"
)

// contextHeader introduces the dependency outputs appended to a prompt.
const contextHeader = "This is the context you're working with:"

func parseTemplate(id, prompt string) (*template.Template, error) {
	return template.New(id).
		Option("missingkey=error").
		Funcs(template.FuncMap{"output": func(string) (string, error) { return "", nil }}).
		Parse(prompt)
}

// Render produces the prompt for node id from the run's inputs and the
// outputs of the node's dependencies. Dependency outputs are addressable by
// node id ({{.intake}}) and by agent role ({{output "Case Intake Agent"}}),
// and are appended in declared order as a context section. Rendering has
// no side effects; the same run state always yields the same prompt.
func (p *Pipeline) Render(id string, run *Run) (string, error) {
	node, ok := p.Node(id)
	if !ok {
		return "", fmt.Errorf("unknown node %q", id)
	}

	data := make(map[string]any, len(run.Inputs)+len(node.DependsOn))
	for k, v := range run.Inputs {
		data[k] = v
	}
	deps := make([]string, len(node.DependsOn))
	for i, dep := range node.DependsOn {
		out, ok := run.Output(dep)
		if !ok {
			return "", fmt.Errorf("dependency %q of node %q has not completed", dep, id)
		}
		data[dep] = out
		deps[i] = out
	}

	byRole := func(role string) (string, error) {
		for i, dep := range node.DependsOn {
			if n, _ := p.Node(dep); strings.EqualFold(n.Agent.Role, role) {
				return deps[i], nil
			}
		}
		return "", fmt.Errorf("node %q has no dependency executed by %q", id, role)
	}

	tmpl, err := p.templates[id].Clone()
	if err != nil {
		return "", err
	}
	tmpl = tmpl.Funcs(template.FuncMap{"output": byRole})

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt of node %q: %w", id, err)
	}

	if len(node.DependsOn) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(contextHeader)
		for i, dep := range node.DependsOn {
			n, _ := p.Node(dep)
			fmt.Fprintf(&sb, "\n\n## %s (%s)\n%s", n.Agent.Role, dep, deps[i])
		}
	}

	prompt := sb.String()
	for _, d := range p.decorators {
		prompt = d(prompt, run.Inputs)
	}
	return prompt, nil
}
