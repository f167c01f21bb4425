package llm

import (
	"context"

	"github.com/nyayagpt/nyaya/provider"
)

// Provider is a chat-completion backend. Adapters from this package and
// the openai client satisfy it, and so does any provider middleware chain
// wrapped around them.
type Provider = provider.RequestResponse[CompletionRequest, CompletionResponse]

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedderFunc adapts a function to Embedder.
type EmbedderFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}
