package httpclient

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_JSONRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("alt") != "json" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("Authorization") != "Bearer gsk-1" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Case") != "42" {
			t.Errorf("X-Case = %q", r.Header.Get("X-Case"))
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"prompt":"theft"}` {
			t.Errorf("body = %s", body)
		}
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	c, err := New(Config{Name: "groq", BaseURL: srv.URL + "/", Auth: Bearer("gsk-1"), Headers: map[string]string{"X-Case": "42"}})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/v1/chat",
		Query:  map[string]string{"alt": "json"},
		Body:   map[string]string{"prompt": "theft"},
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != "ok" {
		t.Errorf("resp = %d %q", resp.StatusCode, resp.Body)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusUnauthorized, KindAuth},
		{http.StatusBadRequest, KindClient},
		{http.StatusBadGateway, KindServer},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error":"Rate limit reached"}`))
		}))
		c, _ := New(Config{Name: "gemini", BaseURL: srv.URL})
		resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
		srv.Close()

		var e *Error
		if !errors.As(err, &e) || e.Kind != tt.kind {
			t.Errorf("status %d: err = %v, want kind %s", tt.status, err, tt.kind)
			continue
		}
		if resp == nil || resp.StatusCode != tt.status {
			t.Errorf("status %d: response should be returned with the error", tt.status)
		}
		if !strings.Contains(err.Error(), "Rate limit reached") || !strings.HasPrefix(err.Error(), "gemini: HTTP ") {
			t.Errorf("error text = %q", err.Error())
		}
	}
}

func TestClient_RateLimitPredicateSurvivesWrapping(t *testing.T) {
	err := &Error{Backend: "gemini", Kind: KindRateLimit, StatusCode: 429}
	wrapped := errors.Join(errors.New("agent intake"), err)
	if !IsRateLimit(wrapped) || IsAuth(wrapped) || IsTimeout(wrapped) {
		t.Error("predicates should see through wrapping")
	}
	if !strings.Contains(wrapped.Error(), "429") {
		t.Errorf("error text = %q", wrapped.Error())
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsTimeout(err) {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestClient_MultipartForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "k" {
			t.Errorf("api key header missing")
		}
		mt, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "multipart/form-data" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
			return
		}
		mr := multipart.NewReader(r.Body, params["boundary"])
		form, err := mr.ReadForm(1 << 20)
		if err != nil {
			t.Error(err)
			return
		}
		if form.Value["language"][0] != "hi" {
			t.Errorf("language = %v", form.Value["language"])
		}
		fh := form.File["audio"][0]
		if fh.Filename != `say "hi".wav` || fh.Header.Get("Content-Type") != "audio/wav" {
			t.Errorf("file header = %q %q", fh.Filename, fh.Header.Get("Content-Type"))
		}
	}))
	defer srv.Close()

	// the JSON default header must not replace the multipart boundary
	c, _ := New(Config{BaseURL: srv.URL, Auth: HeaderKey("x-goog-api-key", "k"), Headers: map[string]string{"Content-Type": "application/json"}})
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &Form{
			Fields: map[string]string{"language": "hi"},
			Files:  []File{{Field: "audio", Name: `say "hi".wav`, ContentType: "audio/wav", Data: []byte("RIFF")}},
		},
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Name != "http" || cfg.Timeout != 30*time.Second {
		t.Errorf("defaults = %+v", cfg)
	}
	if err := (&Config{Timeout: -1}).Validate(); err == nil {
		t.Error("negative timeout should fail")
	}
}
