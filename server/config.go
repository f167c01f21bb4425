package server

import (
	"net/http"

	"github.com/nyayagpt/nyaya/server/middleware"
	"github.com/nyayagpt/nyaya/validation"
)

// Config is the HTTP listener. Timeouts are in seconds; the write timeout
// must cover a full pipeline run including its retries.
type Config struct {
	Host          string                     `yaml:"host" mapstructure:"host"`
	Port          int                        `yaml:"port" mapstructure:"port"`
	ReadTimeout   int                        `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout  int                        `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout   int                        `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxBodySize   string                     `yaml:"max_body_size" mapstructure:"max_body_size"`
	MaxUploadSize string                     `yaml:"max_upload_size" mapstructure:"max_upload_size"`
	CORS          middleware.CORSConfig      `yaml:"cors" mapstructure:"cors"`
	RateLimit     middleware.RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// PipelinePaths start LLM pipelines and are rate limited by default.
var PipelinePaths = []string{"/analyze", "/draft", "/run"}

// UploadPath receives audio and gets MaxUploadSize instead of MaxBodySize.
const UploadPath = "/transcribe"

func (c *Config) ApplyDefaults() {
	setInt(&c.Port, 8000)
	setInt(&c.ReadTimeout, 30)
	setInt(&c.WriteTimeout, 600)
	setInt(&c.IdleTimeout, 60)
	setInt(&c.CORS.MaxAge, 600)
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "25MB"
	}
	setList(&c.CORS.AllowedOrigins, "*")
	setList(&c.CORS.AllowedMethods, http.MethodGet, http.MethodPost, http.MethodOptions)
	setList(&c.CORS.AllowedHeaders, "Origin", "Content-Type", "Accept", "Authorization")
	setList(&c.RateLimit.Paths, PipelinePaths...)
}

func (c *Config) Validate() error {
	return validation.New().
		Range("server.port", c.Port, 0, 65535).
		Check(c.ReadTimeout >= 0, "server.read_timeout", "must not be negative").
		Check(c.WriteTimeout >= 0, "server.write_timeout", "must not be negative").
		Check(c.IdleTimeout >= 0, "server.idle_timeout", "must not be negative").
		Check(c.RateLimit.RequestsPerMinute >= 0, "server.rate_limit.requests_per_minute", "must not be negative").
		Err()
}

func setInt(p *int, v int) {
	if *p == 0 {
		*p = v
	}
}

func setList(p *[]string, v ...string) {
	if len(*p) == 0 {
		*p = v
	}
}
