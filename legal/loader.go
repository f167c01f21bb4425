package legal

import (
	"fmt"

	"github.com/nyayagpt/nyaya/dag"
	"github.com/nyayagpt/nyaya/errors"
)

// requiredNodes are the node ids the Service reads from each pipeline.
var requiredNodes = map[string][]string{
	PipelineEndToEnd: {NodeSections, NodePrecedents, NodeNotification, NodeDocument},
	PipelineAdvisory: {NodeIntake, NodeAdvisory},
	PipelineDrafting: {NodeSections, NodePrecedents, NodeDocument},
}

// LoadPipelines resolves the three topologies from YAML definitions named
// after PipelineEndToEnd, PipelineAdvisory and PipelineDrafting. Agents are
// referenced by their Agent* registry names. Each definition must keep the
// node ids the Service reads, and the language directive is added to every
// prompt.
func LoadPipelines(loader dag.DefinitionLoader, a Agents) (*Pipelines, error) {
	reg := a.Registry()
	load := func(name string) (*dag.Pipeline, error) {
		def, err := loader.Load(name)
		if err != nil {
			return nil, fmt.Errorf("legal: %w", err)
		}
		p, err := dag.Resolve(def, reg, loader, LanguageDecorator())
		if err != nil {
			return nil, err
		}
		for _, id := range requiredNodes[name] {
			if _, ok := p.Node(id); !ok {
				return nil, errors.GraphDefinition(name, fmt.Sprintf("missing node %q", id))
			}
		}
		return p, nil
	}

	var (
		out Pipelines
		err error
	)
	if out.EndToEnd, err = load(PipelineEndToEnd); err != nil {
		return nil, err
	}
	if out.Advisory, err = load(PipelineAdvisory); err != nil {
		return nil, err
	}
	if out.Drafting, err = load(PipelineDrafting); err != nil {
		return nil, err
	}
	return &out, nil
}
