package httpclient

import (
	"fmt"
	"time"
)

// Config configures a Client.
type Config struct {
	// Name identifies the backend in errors and logs ("gemini", "whisper").
	Name    string            `yaml:"name" mapstructure:"name"`
	BaseURL string            `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration     `yaml:"timeout" mapstructure:"timeout"`
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// Auth is applied to every request. Nil sends no credentials.
	Auth Auth `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults sets a 30s timeout and the name "http".
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Name == "" {
		c.Name = "http"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return nil
}
