package llm

import (
	"fmt"
	"time"

	"github.com/nyayagpt/nyaya/provider"
	"github.com/nyayagpt/nyaya/resilience"
)

// Dialect names accepted in Config.Dialect.
const (
	DialectOpenAI = "openai"
	DialectOllama = "ollama"
	DialectGemini = "gemini"
)

const defaultTimeout = 120 * time.Second

// Config holds configuration for creating an LLM backend.
// The Dialect field selects the provider mapping.
type Config struct {
	// Name identifies this backend in logs (e.g., "advisory-llm").
	Name string `yaml:"name" mapstructure:"name"`

	// Dialect selects the provider: "openai" (also Groq and other
	// OpenAI-compatible APIs), "ollama" or "gemini".
	Dialect string `yaml:"dialect" mapstructure:"dialect"`

	// BaseURL is the provider's API base URL. Empty uses the dialect default.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// APIKey authenticates against hosted providers.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Model is the default model (e.g., "llama-3.3-70b-versatile").
	Model string `yaml:"model" mapstructure:"model"`

	// Temperature is the default sampling temperature (0.0-1.0).
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens is the default maximum tokens for responses. 0 means provider default.
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout for HTTP requests. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are additional HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// RateLimit spaces calls out. Nil disables it.
	RateLimit *resilience.RateLimiterConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// Bulkhead caps concurrent calls. Nil disables it.
	Bulkhead *resilience.BulkheadConfig `yaml:"bulkhead" mapstructure:"bulkhead"`
}

// ApplyDefaults sets default values for unset config fields.
func (c *Config) ApplyDefaults() {
	if c.Dialect == "" {
		c.Dialect = DialectOpenAI
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.Name == "" {
		c.Name = c.Dialect + "-llm"
	}
	if c.RateLimit != nil && c.RateLimit.Name == "" {
		c.RateLimit.Name = c.Name
	}
	if c.Bulkhead != nil && c.Bulkhead.Name == "" {
		c.Bulkhead.Name = c.Name
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Dialect {
	case DialectOpenAI, DialectGemini:
		if c.APIKey == "" {
			return fmt.Errorf("llm: %s dialect requires api_key", c.Dialect)
		}
	case DialectOllama:
	default:
		return fmt.Errorf("llm: unknown dialect %q", c.Dialect)
	}
	if c.Model == "" {
		return fmt.Errorf("llm: model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm: temperature must be within [0, 2], got %v", c.Temperature)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("llm: timeout must not be negative")
	}
	return nil
}

// Resilience returns the admission policies for wrapping the backend with
// provider.WithResilience.
func (c *Config) Resilience() provider.ResilienceConfig {
	return provider.ResilienceConfig{
		RateLimiter: c.RateLimit,
		Bulkhead:    c.Bulkhead,
	}
}
