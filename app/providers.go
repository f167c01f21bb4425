package app

import (
	"context"
	"fmt"

	"github.com/nyayagpt/nyaya/llm"
	"github.com/nyayagpt/nyaya/llm/ollama"
	"github.com/nyayagpt/nyaya/llm/openai"
	"github.com/nyayagpt/nyaya/notify"
	"github.com/nyayagpt/nyaya/observability"

	_ "github.com/nyayagpt/nyaya/llm/gemini"
)

// newChatModel creates the chat backend for cfg.Dialect. OpenAI-compatible
// APIs (OpenAI, Groq) go through go-openai; other dialects through the
// REST adapter.
func newChatModel(cfg llm.Config) (llm.Provider, error) {
	if cfg.Dialect == llm.DialectOpenAI {
		c, err := openai.New(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	adapter, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

// newEmbedder creates the embedding backend for cfg.Dialect.
func newEmbedder(cfg llm.Config) (llm.Embedder, error) {
	switch cfg.Dialect {
	case llm.DialectOpenAI:
		c, err := openai.New(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case llm.DialectOllama:
		e, err := ollama.NewEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("embedding: unsupported dialect %q", cfg.Dialect)
	}
}

// HealthCheckers reports the dependencies behind /health. Only the chat
// model is essential; the others degrade single features.
func (a *App) HealthCheckers() []observability.HealthChecker {
	checks := []observability.HealthChecker{
		observability.HealthCheckerFunc(func(ctx context.Context) observability.Health {
			h := observability.Health{Name: "weaviate", Status: observability.HealthStatusUp}
			if !a.store.IsAvailable(ctx) {
				h.Status = observability.HealthStatusDegraded
				h.Message = "vector search unavailable"
			}
			return h
		}),
		observability.HealthCheckerFunc(func(context.Context) observability.Health {
			h := observability.Health{Name: "smtp", Status: observability.HealthStatusUp}
			if !a.notifier.Configured() {
				h.Status = observability.HealthStatusDegraded
				h.Message = notify.ErrMissingConfig
			}
			return h
		}),
	}
	if a.llm != nil {
		checks = append(checks, observability.HealthCheckerFunc(func(ctx context.Context) observability.Health {
			h := observability.Health{Name: "llm", Status: observability.HealthStatusUp, Details: map[string]string{"model": a.Cfg.LLM.Model}}
			if !a.llm.IsAvailable(ctx) {
				h.Status = observability.HealthStatusDown
			}
			return h
		}))
	}
	if a.Transcriber != nil {
		checks = append(checks, observability.HealthCheckerFunc(func(ctx context.Context) observability.Health {
			h := observability.Health{Name: "whisper", Status: observability.HealthStatusUp}
			if !a.Transcriber.IsAvailable(ctx) {
				h.Status = observability.HealthStatusDegraded
				h.Message = "transcription unavailable"
			}
			return h
		}))
	}
	return checks
}
