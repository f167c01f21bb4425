package llm

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// CompletionRequest is what agents send to any backend. Zero values of
// Model, Temperature and MaxTokens fall back to the backend's config.
type CompletionRequest struct {
	Model        string    `json:"model,omitempty" yaml:"model"`
	SystemPrompt string    `json:"system_prompt,omitempty" yaml:"system_prompt"`
	Messages     []Message `json:"messages" yaml:"messages"`
	Temperature  float64   `json:"temperature,omitempty" yaml:"temperature"`
	MaxTokens    int       `json:"max_tokens,omitempty" yaml:"max_tokens"`
	// Extra is merged into the provider body by dialects that support it.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra"`
}

type CompletionResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Usage counts tokens as reported by the backend. Backends that report
// nothing leave it zero.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
