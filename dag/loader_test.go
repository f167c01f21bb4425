package dag

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nyayagpt/nyaya/contract"
	apperrors "github.com/nyayagpt/nyaya/errors"
)

const advisoryYAML = `
name: advisory
nodes:
  - id: intake
    agent: intake
    prompt: "Read the case: {{.case}}"
  - id: ipc
    agent: ipc
    mode: concurrent
    depends_on: [intake]
    prompt: "Find sections for {{.intake}}"
  - id: precedent
    agent: precedent
    mode: concurrent
    depends_on: [intake]
    prompt: "Find precedents"
  - id: advice
    agent: advisor
    depends_on: [ipc, precedent]
    terminal: true
    prompt: "Advise"
    output:
      kind: structured
      required: [category, next_steps]
      defaults:
        next_steps: Please consult a lawyer.
`

func testRegistry() *Registry {
	reg := NewRegistry()
	for _, name := range []string{"intake", "ipc", "precedent", "advisor", "shared", "left", "right"} {
		reg.Register(name, role(name))
	}
	return reg
}

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition([]byte(advisoryYAML))
	if err != nil {
		t.Fatalf("ParseDefinition() error = %v", err)
	}
	if def.Name != "advisory" || len(def.Nodes) != 4 {
		t.Fatalf("unexpected definition: %+v", def)
	}
	adv := def.Nodes[3]
	if !adv.Terminal || adv.Output.Kind != contract.KindStructured {
		t.Errorf("advice node = %+v", adv)
	}
	if adv.Output.Defaults["next_steps"] != "Please consult a lawyer." {
		t.Errorf("defaults = %v", adv.Output.Defaults)
	}

	if _, err := ParseDefinition([]byte("nodes: []")); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := ParseDefinition([]byte("name: [")); err == nil {
		t.Error("expected YAML error")
	}
}

func TestResolve(t *testing.T) {
	def, err := ParseDefinition([]byte(advisoryYAML))
	if err != nil {
		t.Fatalf("ParseDefinition() error = %v", err)
	}
	p, err := Resolve(def, testRegistry(), nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := [][]string{{"intake"}, {"ipc", "precedent"}, {"advice"}}
	if !reflect.DeepEqual(p.Levels(), want) {
		t.Errorf("Levels() = %v, want %v", p.Levels(), want)
	}
	if p.Terminal() != "advice" {
		t.Errorf("Terminal() = %q", p.Terminal())
	}
	ipc, _ := p.Node("ipc")
	if ipc.Mode != Concurrent || ipc.Agent.Role != "ipc" {
		t.Errorf("ipc node = %+v", ipc)
	}
	adv, _ := p.Node("advice")
	if adv.Output.Shape != contract.ShapeObject {
		t.Errorf("structured output should default to object shape, got %q", adv.Output.Shape)
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  *Definition
	}{
		{"unregistered agent", &Definition{Name: "p", Nodes: []NodeDef{{ID: "a", Agent: "ghost", Prompt: "x"}}}},
		{"bad mode", &Definition{Name: "p", Nodes: []NodeDef{{ID: "a", Agent: "intake", Prompt: "x", Mode: "later"}}}},
		{"include without loader", &Definition{Name: "p", Includes: []string{"other"}}},
		{"cycle", &Definition{Name: "p", Nodes: []NodeDef{
			{ID: "a", Agent: "intake", Prompt: "x", DependsOn: []string{"b"}},
			{ID: "b", Agent: "ipc", Prompt: "y", DependsOn: []string{"a"}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.def, testRegistry(), nil)
			if !apperrors.IsGraphDefinition(err) {
				t.Errorf("expected GRAPH_DEFINITION, got %v", err)
			}
		})
	}
}

func TestResolve_Includes(t *testing.T) {
	loader := &memoryLoader{defs: map[string]*Definition{
		"intake-only": {
			Name:  "intake-only",
			Nodes: []NodeDef{{ID: "intake", Agent: "intake", Prompt: "Read {{.case}}"}},
		},
	}}
	def := &Definition{
		Name:     "with-include",
		Includes: []string{"intake-only"},
		Nodes:    []NodeDef{{ID: "ipc", Agent: "ipc", Prompt: "Sections", DependsOn: []string{"intake"}}},
	}

	p, err := Resolve(def, testRegistry(), loader)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !reflect.DeepEqual(p.NodeIDs(), []string{"intake", "ipc"}) {
		t.Errorf("NodeIDs() = %v", p.NodeIDs())
	}
}

func TestResolve_CircularInclude(t *testing.T) {
	loader := &memoryLoader{defs: map[string]*Definition{
		"alpha": {Name: "alpha", Includes: []string{"beta"}, Nodes: []NodeDef{{ID: "a", Agent: "intake", Prompt: "x"}}},
		"beta":  {Name: "beta", Includes: []string{"alpha"}, Nodes: []NodeDef{{ID: "b", Agent: "ipc", Prompt: "y"}}},
	}}

	_, err := Resolve(loader.defs["alpha"], testRegistry(), loader)
	if !apperrors.IsGraphDefinition(err) {
		t.Fatalf("expected circular include error, got %v", err)
	}
}

func TestResolve_DiamondIncludes(t *testing.T) {
	loader := &memoryLoader{defs: map[string]*Definition{
		"shared-pipe": {Name: "shared-pipe", Nodes: []NodeDef{{ID: "shared", Agent: "shared", Prompt: "s"}}},
		"left-pipe": {
			Name:     "left-pipe",
			Includes: []string{"shared-pipe"},
			Nodes:    []NodeDef{{ID: "left", Agent: "left", Prompt: "l", DependsOn: []string{"shared"}}},
		},
		"right-pipe": {
			Name:     "right-pipe",
			Includes: []string{"shared-pipe"},
			Nodes:    []NodeDef{{ID: "right", Agent: "right", Prompt: "r", DependsOn: []string{"shared"}}},
		},
	}}
	main := &Definition{
		Name:     "main",
		Includes: []string{"left-pipe", "right-pipe"},
		Nodes:    []NodeDef{{ID: "join", Agent: "advisor", Prompt: "j", DependsOn: []string{"left", "right"}}},
	}

	p, err := Resolve(main, testRegistry(), loader)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// shared is included twice but declared once
	if !reflect.DeepEqual(p.NodeIDs(), []string{"shared", "left", "right", "join"}) {
		t.Errorf("NodeIDs() = %v", p.NodeIDs())
	}
}

func TestFileDefinitionLoader(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "legal")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "advisory.yaml"), []byte(advisoryYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("name: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewFileDefinitionLoader(dir)
	def, err := loader.Load("advisory")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if def.Name != "advisory" {
		t.Errorf("Name = %q", def.Name)
	}
	if _, err := loader.Load("broken"); err == nil {
		t.Error("expected error for unparsable definition")
	}
	if _, err := loader.Load("missing"); err == nil {
		t.Error("expected error for missing definition")
	}

	if _, err := LoadDefinition("advisory", filepath.Join(dir, "nope.yaml"), filepath.Join(sub, "advisory.yaml")); err != nil {
		t.Errorf("LoadDefinition() error = %v", err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("b", role("B"))
	reg.Register("a", role("A"))
	reg.Register("a", role("A2"))

	if got, ok := reg.Get("a"); !ok || got.Role != "A2" {
		t.Errorf("Get(a) = %+v, %v", got, ok)
	}
	if _, ok := reg.Get("c"); ok {
		t.Error("Get(c) should miss")
	}
	if !reflect.DeepEqual(reg.List(), []string{"a", "b"}) {
		t.Errorf("List() = %v", reg.List())
	}
}

// memoryLoader is a test helper for in-memory definition loading.
type memoryLoader struct {
	defs map[string]*Definition
}

func (m *memoryLoader) Load(name string) (*Definition, error) {
	d, ok := m.defs[name]
	if !ok {
		return nil, fmt.Errorf("pipeline %q not found", name)
	}
	return d, nil
}
