package app

import (
	"fmt"
	"time"

	"github.com/nyayagpt/nyaya/config"
	"github.com/nyayagpt/nyaya/llm"
	"github.com/nyayagpt/nyaya/notify"
	"github.com/nyayagpt/nyaya/observability"
	"github.com/nyayagpt/nyaya/resilience"
	"github.com/nyayagpt/nyaya/search"
	"github.com/nyayagpt/nyaya/server"
	"github.com/nyayagpt/nyaya/transcription/whisper"
	"github.com/nyayagpt/nyaya/validation"
)

// ServiceName is the default service name, also used to locate config files.
const ServiceName = "nyaya"

// Config is the full service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// LLM is the chat model every agent runs on.
	LLM llm.Config `yaml:"llm" mapstructure:"llm"`
	// Embedding is the model used for search queries and indexing.
	Embedding llm.Config `yaml:"embedding" mapstructure:"embedding"`

	Search        search.Config          `yaml:"search" mapstructure:"search"`
	SMTP          notify.Config          `yaml:"smtp" mapstructure:"smtp"`
	Retry         resilience.RetryPolicy `yaml:"retry" mapstructure:"retry"`
	Pipeline      PipelineConfig         `yaml:"pipeline" mapstructure:"pipeline"`
	Server        server.Config          `yaml:"server" mapstructure:"server"`
	Observability observability.Config   `yaml:"observability" mapstructure:"observability"`
	Transcription TranscriptionConfig    `yaml:"transcription" mapstructure:"transcription"`
}

// PipelineConfig controls how pipelines are built and run.
type PipelineConfig struct {
	// DefinitionsDir holds YAML pipeline definitions. Empty uses the
	// built-in pipelines.
	DefinitionsDir string `yaml:"definitions_dir" mapstructure:"definitions_dir"`
	// MaxParallel caps concurrent nodes per level. 0 is unlimited.
	MaxParallel int `yaml:"max_parallel" mapstructure:"max_parallel"`
	// MaxIterations bounds each agent's tool loop.
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`
}

// TranscriptionConfig enables the whisper backend behind /transcribe.
type TranscriptionConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	whisper.Config `yaml:",inline" mapstructure:",squash"`
}

// EnvAliases binds provider-specific variable names onto config keys.
var EnvAliases = map[string]string{
	"GEMINI_API_KEY": "llm.api_key",
	"GOOGLE_API_KEY": "llm.api_key",
	"GROQ_API_KEY":   "llm.api_key",
	"OPENAI_API_KEY": "embedding.api_key",
	"WEAVIATE_URL":   "search.url",
	"WHISPER_URL":    "transcription.url",
}

// Load reads configuration for the service from path (empty searches the
// standard locations), .env and the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	opts := []config.LoaderOption{config.WithEnvAliases(EnvAliases)}
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if err := config.LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()

	if c.LLM.Dialect == "" {
		c.LLM.Dialect = llm.DialectGemini
	}
	if c.LLM.Model == "" && c.LLM.Dialect == llm.DialectGemini {
		c.LLM.Model = "gemini-2.5-flash-lite"
	}
	if c.LLM.Name == "" {
		c.LLM.Name = "agent-llm"
	}
	if c.LLM.RateLimit == nil {
		c.LLM.RateLimit = &resilience.RateLimiterConfig{Rate: 0.25, Burst: 3}
	}
	if c.LLM.Bulkhead == nil {
		c.LLM.Bulkhead = &resilience.BulkheadConfig{MaxConcurrent: 4, MaxWait: 2 * time.Minute}
	}
	c.LLM.ApplyDefaults()

	if c.Embedding.Dialect == "" {
		c.Embedding.Dialect = llm.DialectOllama
	}
	if c.Embedding.Model == "" && c.Embedding.Dialect == llm.DialectOllama {
		c.Embedding.Model = "nomic-embed-text"
	}
	if c.Embedding.Name == "" {
		c.Embedding.Name = "embedding"
	}
	c.Embedding.ApplyDefaults()

	c.Search.ApplyDefaults()
	c.SMTP.ApplyDefaults()
	c.Retry.ApplyDefaults()
	if c.Pipeline.MaxIterations == 0 {
		c.Pipeline.MaxIterations = 6
	}
	c.Server.ApplyDefaults()
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.ServiceVersion == "" {
		c.Observability.ServiceVersion = c.Version
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
	c.Transcription.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return validation.New().
		CheckErr("config.llm", c.LLM.Validate()).
		OneOf("config.embedding.dialect", c.Embedding.Dialect, []string{llm.DialectOpenAI, llm.DialectOllama}).
		CheckErr("config.embedding", c.Embedding.Validate()).
		CheckErr("config.search", c.Search.Validate()).
		Check(c.Retry.MaxAttempts >= 1, "config.retry.max_attempts", fmt.Sprintf("must be at least 1 (got: %d)", c.Retry.MaxAttempts)).
		Check(c.Pipeline.MaxParallel >= 0, "config.pipeline.max_parallel", fmt.Sprintf("must be non-negative (got: %d)", c.Pipeline.MaxParallel)).
		Range("config.pipeline.max_iterations", c.Pipeline.MaxIterations, 1, 50).
		CheckErr("config.server", c.Server.Validate()).
		Err()
}
