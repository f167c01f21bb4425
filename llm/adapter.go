package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nyayagpt/nyaya/httpclient"
	"github.com/nyayagpt/nyaya/httpclient/rest"
)

// ErrNoDialect is returned by NewWithDialect for a nil dialect.
var ErrNoDialect = errors.New("llm: dialect is required")

var _ Provider = (*Adapter)(nil)

// Adapter speaks to one chat backend through a Dialect. Transport concerns
// (auth, timeout, status classification) belong to the REST client; the
// Dialect only maps bodies and paths.
type Adapter struct {
	rest     *rest.Client
	dialect  Dialect
	defaults CompletionRequest
}

// New looks up cfg.Dialect in the registry and builds an Adapter for it.
func New(cfg Config) (*Adapter, error) {
	cfg.ApplyDefaults()
	d, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	return build(d, cfg)
}

// NewWithDialect builds an Adapter for an unregistered dialect. cfg.Dialect
// defaults to the dialect's own name.
func NewWithDialect(d Dialect, cfg Config) (*Adapter, error) {
	if d == nil {
		return nil, ErrNoDialect
	}
	if cfg.Dialect == "" {
		cfg.Dialect = d.Name()
	}
	cfg.ApplyDefaults()
	return build(d, cfg)
}

func build(d Dialect, cfg Config) (*Adapter, error) {
	base := cfg.BaseURL
	if base == "" {
		base = d.DefaultBaseURL()
	}
	client, err := rest.New(httpclient.Config{
		Name:    cfg.Name,
		BaseURL: base,
		Timeout: cfg.Timeout,
		Auth:    d.Auth(cfg.APIKey),
		Headers: cfg.Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: %s client: %w", cfg.Name, err)
	}
	return &Adapter{
		rest:    client,
		dialect: d,
		defaults: CompletionRequest{
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
	}, nil
}

func (a *Adapter) Name() string { return a.rest.HTTP().Name() }

// Dialect returns the request mapping in use.
func (a *Adapter) Dialect() Dialect { return a.dialect }

// IsAvailable checks the dialect's health path. Dialects without one are
// assumed reachable.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	path := a.dialect.HealthPath()
	if path == "" {
		return true
	}
	_, err := rest.Get[json.RawMessage](ctx, a.rest, path)
	return err == nil
}

func (a *Adapter) Close(ctx context.Context) error { return a.rest.HTTP().Close(ctx) }

// Execute runs one completion. Zero-valued model, temperature and token
// limit are taken from the adapter's config.
func (a *Adapter) Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if req.Model == "" {
		req.Model = a.defaults.Model
	}
	if req.Temperature == 0 {
		req.Temperature = a.defaults.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = a.defaults.MaxTokens
	}

	body, err := a.dialect.BuildRequest(req)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: %s request: %w", a.dialect.Name(), err)
	}
	raw, err := rest.Post[json.RawMessage](ctx, a.rest, a.dialect.ChatPath(req.Model), body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: %s: %w", a.dialect.Name(), err)
	}
	out, err := a.dialect.ParseResponse(raw)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: %s response: %w", a.dialect.Name(), err)
	}
	if out.Model == "" {
		out.Model = req.Model
	}
	return *out, nil
}
