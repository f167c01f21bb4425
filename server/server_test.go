package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/server/middleware"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	s := New(cfg, logger.NewNop())
	s.RegisterDefaultEndpoints("nyaya")
	s.GinEngine().POST("/run", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"document": "ok"}) })
	return s
}

func TestServer_MiddlewareStack(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("expected request id header")
	}
}

func TestServer_RateLimitsPipelineRoutes(t *testing.T) {
	s := newTestServer(t, Config{RateLimit: middleware.RateLimitConfig{RequestsPerMinute: 1, Burst: 1}})

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		if path == "/health" {
			req = httptest.NewRequest(http.MethodGet, path, nil)
		}
		req.RemoteAddr = "10.0.0.1:4000"
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("/run"); code != http.StatusOK {
		t.Fatalf("first /run = %d", code)
	}
	if code := do("/run"); code != http.StatusTooManyRequests {
		t.Errorf("second /run = %d, want 429", code)
	}
	if code := do("/health"); code != http.StatusOK {
		t.Errorf("/health = %d, should not be limited", code)
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8000 || cfg.MaxBodySize != "1MB" || cfg.MaxUploadSize != "25MB" {
		t.Errorf("defaults = %+v", cfg)
	}
	if len(cfg.RateLimit.Paths) != len(PipelinePaths) {
		t.Errorf("rate limit paths = %v", cfg.RateLimit.Paths)
	}

	bad := Config{Port: 70000}
	if err := bad.Validate(); err == nil {
		t.Error("expected port validation error")
	}
}

func TestTrackRoutes(t *testing.T) {
	s := newTestServer(t, Config{})
	reg := logger.NewComponentRegistry()
	s.TrackRoutes(reg)

	if got := len(reg.Handlers()); got != 4 {
		t.Errorf("handlers = %d, want 4", got)
	}
	if infra := reg.Infrastructure(); len(infra) != 1 || infra[0].Details != s.Addr() {
		t.Errorf("infrastructure = %+v", infra)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := map[string]string{
		"github.com/nyayagpt/nyaya/server/endpoint.(*Legal).Analyze-fm": "Legal.Analyze",
		"github.com/nyayagpt/nyaya/server/endpoint.Health.func1":        "health",
	}
	for in, want := range tests {
		if got := formatHandlerName(in); got != want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
