package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nyayagpt/nyaya/httpclient"
)

// Client speaks JSON to one backend.
type Client struct {
	http *httpclient.Client
}

// New creates a Client whose requests send and accept application/json.
func New(cfg httpclient.Config) (*Client, error) {
	headers := map[string]string{"Content-Type": "application/json", "Accept": "application/json"}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	cfg.Headers = headers
	c, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

// HTTP returns the underlying client.
func (c *Client) HTTP() *httpclient.Client { return c.http }

// Get decodes the JSON body of GET path into T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	return do[T](ctx, c, http.MethodGet, path, nil)
}

// Post sends body as JSON and decodes the reply into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return do[T](ctx, c, http.MethodPost, path, body)
}

func do[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	resp, err := c.http.Do(ctx, httpclient.Request{Method: method, Path: path, Body: body})
	if err != nil {
		return out, err
	}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, fmt.Errorf("%s: decoding response: %w", c.http.Name(), err)
	}
	return out, nil
}
