package search

import (
	"fmt"
	"net/url"
)

// Config holds the vector store and retrieval settings.
type Config struct {
	// URL of the Weaviate server, e.g. "http://localhost:8080".
	URL string `yaml:"url" mapstructure:"url"`

	// APIKey is sent as a bearer key to hosted clusters.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Headers are added to every request (e.g. module API keys).
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// IPCCollection holds penal code sections in all languages.
	IPCCollection string `yaml:"ipc_collection" mapstructure:"ipc_collection"`

	// PrecedentCollection holds case law summaries.
	PrecedentCollection string `yaml:"precedent_collection" mapstructure:"precedent_collection"`

	// TopK is the number of passages a tool call returns.
	TopK int `yaml:"top_k" mapstructure:"top_k"`

	// ChunkSize and ChunkOverlap control indexing, in characters.
	ChunkSize    int `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`

	// BatchSize is the number of chunks embedded and written per request.
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
}

// ApplyDefaults sets default values for unset config fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:8080"
	}
	if c.IPCCollection == "" {
		c.IPCCollection = "IPCSection"
	}
	if c.PrecedentCollection == "" {
		c.PrecedentCollection = "Precedent"
	}
	if c.TopK == 0 {
		c.TopK = 3
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 1000
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 200
	}
	if c.BatchSize == 0 {
		c.BatchSize = 64
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("search: url must be absolute, got %q", c.URL)
	}
	if c.IPCCollection == "" || c.PrecedentCollection == "" {
		return fmt.Errorf("search: collection names are required")
	}
	if c.TopK < 1 {
		return fmt.Errorf("search: top_k must be at least 1 (got: %d)", c.TopK)
	}
	if c.ChunkSize < 1 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("search: chunk_overlap (%d) must be below chunk_size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("search: batch_size must be at least 1 (got: %d)", c.BatchSize)
	}
	return nil
}
