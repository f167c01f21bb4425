package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/observability"
	"github.com/nyayagpt/nyaya/server/endpoint"
	"github.com/nyayagpt/nyaya/server/middleware"
)

// Server serves the Gin routes behind the middleware stack over HTTP/1.1
// and h2c.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	handler    http.Handler
	stopAfter  time.Duration
	log        *logger.Logger
}

// Option customises New.
type Option func(*options)

type options struct {
	metrics *observability.Metrics
}

// WithMetrics records request counts and latency on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New builds the server. Requests pass, in order, through panic recovery,
// request ids, tracing, CORS, body size limits, per-client rate limiting,
// metrics and the request log. cfg should have had ApplyDefaults called.
func New(cfg Config, log *logger.Logger, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	mode := gin.ReleaseMode
	if log.Level() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)
	engine := gin.New()

	stack := []middleware.Middleware{
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.CORS(&cfg.CORS),
	}
	if cfg.MaxBodySize != "" {
		stack = append(stack, middleware.BodySizeLimit(cfg.MaxBodySize, map[string]string{UploadPath: cfg.MaxUploadSize}))
	}
	stack = append(stack,
		middleware.RateLimit(cfg.RateLimit),
		middleware.Metrics(o.metrics),
		middleware.RequestLogger(log),
	)
	handler := middleware.Chain(stack...)(engine)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      h2c.NewHandler(handler, &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: 2 * time.Minute}),
			ReadTimeout:  seconds(cfg.ReadTimeout),
			WriteTimeout: seconds(cfg.WriteTimeout),
			IdleTimeout:  seconds(cfg.IdleTimeout),
		},
		engine:    engine,
		handler:   handler,
		stopAfter: seconds(cfg.WriteTimeout),
		log:       log.WithComponent("server"),
	}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// GinEngine is where routes are registered.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Handler is the engine wrapped in the middleware stack.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Start binds the port and serves in the background. A bind failure is
// returned; later serve errors are logged.
func (s *Server) Start(ctx context.Context) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server stopped unexpectedly", logger.Fields(logger.FieldError, err.Error()))
		}
	}()
	s.log.Info("listening", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop waits up to the write timeout for in-flight requests, since a
// pipeline request can run for minutes.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.stopAfter)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// RegisterDefaultEndpoints registers /health, /info and /version.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checkers ...observability.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(serviceName, checkers...))
	s.engine.GET("/info", endpoint.Info(serviceName))
	s.engine.GET("/version", endpoint.Version())
}
