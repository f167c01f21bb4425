package dag

import (
	"sort"
	"sync"

	"github.com/nyayagpt/nyaya/agent"
)

// Registry provides named agent lookup for pipelines loaded from YAML.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]agent.Agent
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]agent.Agent)}
}

// Register adds an agent under name, replacing any previous entry.
func (r *Registry) Register(name string, a agent.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[name] = a
}

// Get retrieves an agent by name.
func (r *Registry) Get(name string) (agent.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[name]
	return a, ok
}

// List returns sorted names of all registered agents.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
