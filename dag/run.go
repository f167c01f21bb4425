package dag

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nyayagpt/nyaya/contract"
)

// Status is a node's state within one run.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Run holds the state of one pipeline invocation. Outputs are recorded as
// nodes complete. A run is never reused; a retry starts a new one.
type Run struct {
	ID        string
	Pipeline  string
	Inputs    map[string]string
	StartedAt time.Time

	mu         sync.RWMutex
	status     map[string]Status
	outputs    map[string]string
	parsed     map[string]*contract.Parsed
	violations []error
}

// NewRun creates a run with every node pending. Inputs are copied.
func NewRun(p *Pipeline, inputs map[string]string) *Run {
	r := &Run{
		ID:        uuid.NewString(),
		Pipeline:  p.Name(),
		Inputs:    maps.Clone(inputs),
		StartedAt: time.Now(),
		status:    make(map[string]Status, len(p.nodes)),
		outputs:   make(map[string]string, len(p.nodes)),
		parsed:    make(map[string]*contract.Parsed),
	}
	if r.Inputs == nil {
		r.Inputs = map[string]string{}
	}
	for _, n := range p.nodes {
		r.status[n.ID] = StatusPending
	}
	return r
}

// Status returns the node's current status.
func (r *Run) Status(id string) Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status[id]
}

// Statuses returns a snapshot of every node's status.
func (r *Run) Statuses() map[string]Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.status)
}

// Output returns the raw output of a completed node.
func (r *Run) Output(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.status[id] != StatusDone {
		return "", false
	}
	out, ok := r.outputs[id]
	return out, ok
}

// Outputs returns a snapshot of all completed outputs keyed by node id.
func (r *Run) Outputs() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.outputs)
}

// Parsed returns the checked output of a completed node.
func (r *Run) Parsed(id string) (*contract.Parsed, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsed[id]
	return p, ok
}

// Violations returns the contract violations recorded so far.
func (r *Run) Violations() []error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]error(nil), r.violations...)
}

func (r *Run) setStatus(id string, s Status) {
	r.mu.Lock()
	r.status[id] = s
	r.mu.Unlock()
}

func (r *Run) complete(id, output string, parsed *contract.Parsed, violation error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[id] = output
	r.status[id] = StatusDone
	if parsed != nil {
		r.parsed[id] = parsed
	}
	if violation != nil {
		r.violations = append(r.violations, violation)
	}
}
