package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client performs calls against one backend. It never retries.
type Client struct {
	hc  *http.Client
	cfg Config
}

// New validates cfg and creates a Client with its own transport.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		hc: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   cfg.Timeout,
		},
		cfg: cfg,
	}, nil
}

// Name is the configured backend name.
func (c *Client) Name() string { return c.cfg.Name }

// Close drops idle connections.
func (c *Client) Close(context.Context) error {
	c.hc.CloseIdleConnections()
	return nil
}

// Do sends req and reads the whole response. A non-2xx status returns the
// response together with an *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		kind := KindTransport
		if ctx.Err() != nil || isTimeout(err) {
			kind = KindTimeout
		}
		return nil, &Error{Backend: c.cfg.Name, Kind: kind, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Backend: c.cfg.Name, Kind: KindTransport, Err: fmt.Errorf("reading body: %w", err)}
	}
	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if e := classify(c.cfg.Name, resp.StatusCode, body); e != nil {
		return out, e
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.Path
	if c.cfg.BaseURL != "" && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(url, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: encoding body: %w", c.cfg.Name, err)
	}
	r, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.cfg.Name, err)
	}

	if len(req.Query) > 0 {
		q := r.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		r.URL.RawQuery = q.Encode()
	}
	for k, v := range c.cfg.Headers {
		r.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}
	// a multipart boundary must win over any configured content type
	if _, ok := req.Body.(*Form); ok || (contentType != "" && r.Header.Get("Content-Type") == "") {
		r.Header.Set("Content-Type", contentType)
	}
	if c.cfg.Auth != nil {
		c.cfg.Auth(r)
	}
	return r, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case *Form:
		return v.encode()
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
