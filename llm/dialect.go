package llm

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/nyayagpt/nyaya/httpclient"
)

// Dialect is the wire mapping of one chat backend. Implementations live in
// llm/ollama and llm/gemini and register from init. OpenAI-compatible
// backends use the llm/openai client instead.
type Dialect interface {
	Name() string
	// DefaultBaseURL applies when Config.BaseURL is empty.
	DefaultBaseURL() string
	// ChatPath is the completion endpoint for model.
	ChatPath(model string) string
	// HealthPath is requested by IsAvailable. Empty disables the check.
	HealthPath() string
	// Auth returns nil when the backend needs no credentials.
	Auth(apiKey string) httpclient.Auth
	BuildRequest(req CompletionRequest) (any, error)
	ParseResponse(body []byte) (*CompletionResponse, error)
}

var registry = struct {
	sync.RWMutex
	byName map[string]Dialect
}{byName: map[string]Dialect{}}

// RegisterDialect makes d available to New under name, replacing any
// earlier registration.
func RegisterDialect(name string, d Dialect) {
	registry.Lock()
	registry.byName[name] = d
	registry.Unlock()
}

// GetDialect returns the dialect registered under name.
func GetDialect(name string) (Dialect, error) {
	registry.RLock()
	d, ok := registry.byName[name]
	registry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("llm: no dialect %q registered (is its package imported?)", name)
	}
	return d, nil
}

// Dialects lists registered names in sorted order.
func Dialects() []string {
	registry.RLock()
	defer registry.RUnlock()
	return slices.Sorted(maps.Keys(registry.byName))
}
