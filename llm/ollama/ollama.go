// Package ollama maps the llm types onto Ollama's native HTTP API and
// registers the "ollama" dialect.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nyayagpt/nyaya/httpclient"
	"github.com/nyayagpt/nyaya/httpclient/rest"
	"github.com/nyayagpt/nyaya/llm"
)

const defaultBaseURL = "http://localhost:11434"

func init() {
	llm.RegisterDialect(llm.DialectOllama, Dialect{})
}

// Dialect implements llm.Dialect for /api/chat.
type Dialect struct{}

var _ llm.Dialect = Dialect{}

// Name returns "ollama".
func (Dialect) Name() string { return llm.DialectOllama }

// DefaultBaseURL returns the local Ollama address.
func (Dialect) DefaultBaseURL() string { return defaultBaseURL }

// ChatPath returns the chat endpoint; the model travels in the body.
func (Dialect) ChatPath(string) string { return "/api/chat" }

// HealthPath lists local models, which fails when the daemon is down.
func (Dialect) HealthPath() string { return "/api/tags" }

// Auth returns nil: a local daemon is unauthenticated.
func (Dialect) Auth(string) httpclient.Auth { return nil }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   any           `json:"format,omitempty"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

// BuildRequest creates a non-streaming chat request. Extra["format"] is
// passed through to enable Ollama's JSON mode.
func (Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("ollama: model is required")
	}

	msgs := make([]chatMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: llm.RoleSystem, Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}

	out := chatRequest{
		Model:    req.Model,
		Messages: msgs,
		Format:   req.Extra["format"],
	}
	if req.Temperature != 0 || req.MaxTokens != 0 {
		out.Options = &chatOptions{Temperature: req.Temperature, NumPredict: req.MaxTokens}
	}
	return out, nil
}

// ParseResponse decodes a chat response.
func (Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	return &llm.CompletionResponse{
		Content: resp.Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}

// Embedder calls /api/embed with a batch of inputs.
type Embedder struct {
	rest  *rest.Client
	model string
}

var _ llm.Embedder = (*Embedder)(nil)

// NewEmbedder creates an embedder for model. An empty baseURL uses the
// local daemon.
func NewEmbedder(cfg llm.Config) (*Embedder, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Name == "" {
		cfg.Name = "ollama-embed"
	}
	client, err := rest.New(httpclient.Config{
		Name:    cfg.Name,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: cfg.Headers,
	})
	if err != nil {
		return nil, err
	}
	return &Embedder{rest: client, model: cfg.Model}, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns one vector per text.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := rest.Post[embedResponse](ctx, e.rest, "/api/embed", embedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("ollama: embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: embed: got %d vectors for %d inputs", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}
