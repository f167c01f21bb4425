package dag

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/nyayagpt/nyaya/contract"
	"github.com/nyayagpt/nyaya/errors"
)

// Definition is the YAML form of a pipeline. Agents are referenced by
// registry name; includes are other definitions whose nodes come first.
type Definition struct {
	// Name is the pipeline identifier.
	Name string `yaml:"name"`
	// Includes lists definitions to compose (recursive).
	Includes []string `yaml:"includes,omitempty"`
	// Nodes defines the pipeline's nodes in declaration order.
	Nodes []NodeDef `yaml:"nodes"`
}

// NodeDef defines a node within a pipeline definition.
type NodeDef struct {
	ID        string        `yaml:"id"`
	Agent     string        `yaml:"agent"`
	Prompt    string        `yaml:"prompt"`
	Output    contract.Spec `yaml:"output,omitempty"`
	DependsOn []string      `yaml:"depends_on,omitempty"`
	// Mode is "blocking" (default) or "concurrent".
	Mode     string `yaml:"mode,omitempty"`
	Terminal bool   `yaml:"terminal,omitempty"`
}

// DefinitionLoader loads pipeline definitions by name.
type DefinitionLoader interface {
	Load(name string) (*Definition, error)
}

// FileDefinitionLoader loads definitions from YAML files on disk.
type FileDefinitionLoader struct {
	dirs []string
}

// NewFileDefinitionLoader creates a loader that searches dirs for {name}.yaml
// or {name}.yml, directly or one subdirectory down.
func NewFileDefinitionLoader(dirs ...string) DefinitionLoader {
	return &FileDefinitionLoader{dirs: dirs}
}

// Load finds and parses the definition called name.
func (l *FileDefinitionLoader) Load(name string) (*Definition, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if d, err := loadDefinitionFile(path); err == nil {
				return d, nil
			}

			matches, _ := filepath.Glob(filepath.Join(dir, "*", name+ext))
			for _, match := range matches {
				if d, err := loadDefinitionFile(match); err == nil {
					return d, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("dag: pipeline %q not found in %v", name, l.dirs)
}

// ParseDefinition decodes a YAML definition.
func ParseDefinition(data []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if d.Name == "" {
		return nil, fmt.Errorf("dag: definition has no name")
	}
	return &d, nil
}

func loadDefinitionFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("dag: parsing %s: %w", path, err)
	}
	return d, nil
}

// LoadDefinition loads a definition from explicit file paths, trying each
// until one succeeds.
func LoadDefinition(name string, paths ...string) (*Definition, error) {
	for _, path := range paths {
		d, err := loadDefinitionFile(path)
		if err == nil {
			return d, nil
		}
	}
	return nil, fmt.Errorf("dag: pipeline %q not found in provided paths", name)
}

// Resolve turns a definition into a validated Pipeline. Includes are
// resolved recursively and their nodes precede the definition's own; a node
// id that appears twice keeps its first declaration. Agents are looked up
// in registry. loader may be nil when the definition has no includes.
func Resolve(def *Definition, registry *Registry, loader DefinitionLoader, decorators ...PromptDecorator) (*Pipeline, error) {
	var defs []NodeDef
	seen := make(map[string]bool)
	if err := collect(def, loader, make(map[string]bool), make(map[string]bool), seen, &defs); err != nil {
		return nil, err
	}

	b := NewBuilder(def.Name).Decorate(decorators...)
	for _, nd := range defs {
		a, ok := registry.Get(nd.Agent)
		if !ok {
			return nil, errors.GraphDefinition(def.Name, fmt.Sprintf("node %q uses unregistered agent %q", nd.ID, nd.Agent))
		}
		mode, err := ParseMode(nd.Mode)
		if err != nil {
			return nil, errors.GraphDefinition(def.Name, fmt.Sprintf("node %q: %v", nd.ID, err))
		}
		out := nd.Output
		if out.IsStructured() && out.Shape == "" {
			out.Shape = contract.ShapeObject
		}
		b.Add(TaskNode{
			ID:        nd.ID,
			Agent:     a,
			Prompt:    nd.Prompt,
			Output:    out,
			DependsOn: nd.DependsOn,
			Mode:      mode,
			Terminal:  nd.Terminal,
		})
	}
	return b.Build()
}

func collect(def *Definition, loader DefinitionLoader, stack, resolved, seen map[string]bool, out *[]NodeDef) error {
	if stack[def.Name] {
		return errors.GraphDefinition(def.Name, "circular include")
	}
	stack[def.Name] = true
	defer delete(stack, def.Name)

	for _, name := range def.Includes {
		if resolved[name] {
			continue // diamond include
		}
		if loader == nil {
			return errors.GraphDefinition(def.Name, fmt.Sprintf("include %q needs a loader", name))
		}
		sub, err := loader.Load(name)
		if err != nil {
			return errors.GraphDefinition(def.Name, fmt.Sprintf("loading include %q: %v", name, err))
		}
		if err := collect(sub, loader, stack, resolved, seen, out); err != nil {
			return err
		}
	}

	for _, nd := range def.Nodes {
		if seen[nd.ID] {
			continue
		}
		seen[nd.ID] = true
		*out = append(*out, nd)
	}
	resolved[def.Name] = true
	return nil
}
