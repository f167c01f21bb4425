package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/resilience"
)

// RateLimitConfig limits how often one client may start pipeline runs.
type RateLimitConfig struct {
	// RequestsPerMinute per client. Zero disables limiting.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	// Burst is the number of requests a client may make at once.
	Burst int `yaml:"burst" mapstructure:"burst"`
	// Paths are the limited paths. Empty limits every path.
	Paths []string `yaml:"paths" mapstructure:"paths"`
}

const idleLimiterTTL = 10 * time.Minute

// RateLimit returns middleware that gives each client IP its own token
// bucket. Rejected requests get 429.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.RequestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limited := make(map[string]bool, len(cfg.Paths))
	for _, p := range cfg.Paths {
		limited[p] = true
	}
	retryAfter := strconv.Itoa(max(60/cfg.RequestsPerMinute, 1))
	clients := &clientLimiters{
		cfg: resilience.RateLimiterConfig{
			Name:  "http",
			Rate:  float64(cfg.RequestsPerMinute) / 60,
			Burst: max(cfg.Burst, 1),
		},
		buckets: make(map[string]*bucket),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(limited) > 0 && !limited[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !clients.allow(clientIP(r)) {
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, apperrors.RateLimited())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type bucket struct {
	limiter  *resilience.RateLimiter
	lastSeen time.Time
}

type clientLimiters struct {
	cfg       resilience.RateLimiterConfig
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func (c *clientLimiters) allow(key string) bool {
	c.mu.Lock()
	now := time.Now()
	if now.Sub(c.lastSweep) > idleLimiterTTL {
		for k, b := range c.buckets {
			if now.Sub(b.lastSeen) > idleLimiterTTL {
				delete(c.buckets, k)
			}
		}
		c.lastSweep = now
	}
	b, ok := c.buckets[key]
	if !ok {
		b = &bucket{limiter: resilience.NewRateLimiter(c.cfg)}
		c.buckets[key] = b
	}
	b.lastSeen = now
	c.mu.Unlock()

	return b.limiter.Allow()
}

// clientIP prefers the first X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
