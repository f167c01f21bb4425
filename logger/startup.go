package logger

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// InfraComponent is an external dependency such as the LLM backend, the
// vector store or the SMTP relay. Status is "active", "lazy", "disabled",
// "configured" or "not configured".
type InfraComponent struct {
	Name, Type, Status, Details string
}

type PipelineComponent struct {
	Name     string
	Nodes    []string
	Terminal string
}

type HandlerComponent struct {
	Method, Path string
}

// ComponentRegistry records what startup wired so the process can print
// one summary once it is serving.
type ComponentRegistry struct {
	started time.Time

	mu        sync.Mutex
	infra     []InfraComponent
	pipelines []PipelineComponent
	handlers  []HandlerComponent
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{started: time.Now()}
}

func (r *ComponentRegistry) RegisterInfrastructure(name, kind, status, details string) {
	r.mu.Lock()
	r.infra = append(r.infra, InfraComponent{name, kind, status, details})
	r.mu.Unlock()
}

// RegisterPipeline records nodes in declaration order.
func (r *ComponentRegistry) RegisterPipeline(name string, nodes []string, terminal string) {
	r.mu.Lock()
	r.pipelines = append(r.pipelines, PipelineComponent{name, slices.Clone(nodes), terminal})
	r.mu.Unlock()
}

func (r *ComponentRegistry) RegisterHandler(method, path string) {
	r.mu.Lock()
	r.handlers = append(r.handlers, HandlerComponent{method, path})
	r.mu.Unlock()
}

func (r *ComponentRegistry) Infrastructure() []InfraComponent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.infra)
}

func (r *ComponentRegistry) Pipelines() []PipelineComponent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.pipelines)
}

// Handlers returns routes ordered by path, then method.
func (r *ComponentRegistry) Handlers() []HandlerComponent {
	r.mu.Lock()
	out := slices.Clone(r.handlers)
	r.mu.Unlock()
	slices.SortFunc(out, func(a, b HandlerComponent) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Method, b.Method))
	})
	return out
}

// LogSummary logs dependencies and pipelines at info, routes at debug, and
// finally the time since the registry was created.
func (r *ComponentRegistry) LogSummary(l *Logger) {
	for _, c := range r.Infrastructure() {
		l.Info(fmt.Sprintf("infra %-14s %s", c.Name, c.Status), Fields("type", c.Type, "details", c.Details))
	}
	for _, p := range r.Pipelines() {
		l.Info(fmt.Sprintf("pipeline %-10s %s", p.Name, strings.Join(p.Nodes, " ")), Fields("terminal", p.Terminal))
	}
	for _, h := range r.Handlers() {
		l.Debug(fmt.Sprintf("route %-6s %s", h.Method, h.Path))
	}
	l.Info("startup complete", DurationFields("startup", time.Since(r.started)))
}
