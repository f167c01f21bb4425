package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/observability"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not an error response: %q", rec.Body.String())
	}
	return body.Error.Code
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	serve(Chain(mark("recovery"), mark("request-id"), mark("logger"))(ok), httptest.NewRequest(http.MethodGet, "/", nil))
	if want := []string{"recovery", "request-id", "logger"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map in advisory parser")
	}))
	rec := serve(h, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INTERNAL_ERROR" {
		t.Errorf("code = %q", code)
	}
	if strings.Contains(rec.Body.String(), "nil map") {
		t.Error("panic value must not leak to the client")
	}

	if serve(Recovery(logger.NewNop())(ok), httptest.NewRequest(http.MethodGet, "/", nil)).Code != http.StatusOK {
		t.Error("a healthy handler should pass through")
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(HeaderRequestID)
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	id := rec.Header().Get(HeaderRequestID)
	if id == "" || id != seen {
		t.Errorf("generated id %q, handler saw %q", id, seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "case-42")
	if got := serve(h, req).Header().Get(HeaderRequestID); got != "case-42" {
		t.Errorf("existing id replaced with %q", got)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		cfg        CORSConfig
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
		wantMaxAge string
	}{
		{"wildcard", CORSConfig{AllowedOrigins: []string{"*"}}, http.MethodPost, "http://localhost:3000", false, 200, "*", ""},
		{"wildcard with credentials echoes origin", CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}, http.MethodPost, "http://localhost:3000", false, 200, "http://localhost:3000", ""},
		{"listed origin", CORSConfig{AllowedOrigins: []string{"https://nyaya.in"}}, http.MethodGet, "https://nyaya.in", false, 200, "https://nyaya.in", ""},
		{"unlisted origin", CORSConfig{AllowedOrigins: []string{"https://nyaya.in"}}, http.MethodGet, "https://evil.example", false, 200, "", ""},
		{"preflight", CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"POST"}, MaxAge: 600}, http.MethodOptions, "http://localhost:3000", true, 204, "*", "600"},
		{"plain OPTIONS reaches the handler", CORSConfig{AllowedOrigins: []string{"*"}}, http.MethodOptions, "", false, 200, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/run", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := serve(CORS(&tt.cfg)(ok), req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := rec.Header().Get("Access-Control-Max-Age"); got != tt.wantMaxAge {
				t.Errorf("Max-Age = %q, want %q", got, tt.wantMaxAge)
			}
		})
	}
}

func TestBodySizeLimit(t *testing.T) {
	read := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	h := BodySizeLimit("1KB", map[string]string{"/transcribe": "4KB"})(read)

	small := strings.Repeat("a", 512)
	big := strings.Repeat("a", 2048)

	if rec := serve(h, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(small))); rec.Code != http.StatusOK {
		t.Errorf("small body: status %d", rec.Code)
	}
	rec := serve(h, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(big)))
	if rec.Code != http.StatusRequestEntityTooLarge || errorCode(t, rec) != "BODY_TOO_LARGE" {
		t.Errorf("big JSON body: status %d %s", rec.Code, rec.Body.String())
	}
	if rec := serve(h, httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(big))); rec.Code != http.StatusOK {
		t.Errorf("upload path should allow 4KB, got %d", rec.Code)
	}

	// no Content-Length: the reader itself enforces the cap
	req := httptest.NewRequest(http.MethodPost, "/analyze", io.NopCloser(strings.NewReader(big)))
	req.ContentLength = -1
	if rec := serve(h, req); rec.Code != http.StatusBadRequest {
		t.Errorf("streamed big body: status %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestsPerMinute: 1, Burst: 2, Paths: []string{"/run"}})(ok)
	do := func(path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = ip + ":5555"
		return serve(h, req)
	}

	for i := 0; i < 2; i++ {
		if rec := do("/run", "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}
	rec := do("/run", "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests || errorCode(t, rec) != "RATE_LIMITED" {
		t.Fatalf("after burst: status %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if do("/run", "10.0.0.2").Code != http.StatusOK {
		t.Error("other clients should not be limited")
	}
	if do("/health", "10.0.0.1").Code != http.StatusOK {
		t.Error("unlisted paths should not be limited")
	}

	req := httptest.NewRequest(http.MethodPost, "/run", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.9" {
		t.Errorf("clientIP = %q", got)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(RateLimitConfig{})(ok)
	for i := 0; i < 50; i++ {
		if serve(h, httptest.NewRequest(http.MethodPost, "/run", nil)).Code != http.StatusOK {
			t.Fatal("zero requests_per_minute should disable limiting")
		}
	}
}

type flushRecorder struct {
	*httptest.ResponseRecorder
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

func TestRequestLogger(t *testing.T) {
	h := RequestLogger(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.(http.Flusher).Flush()
		w.WriteHeader(http.StatusBadGateway)
	}))
	fr := &flushRecorder{ResponseRecorder: httptest.NewRecorder()}
	h.ServeHTTP(fr, httptest.NewRequest(http.MethodPost, "/run", nil))
	if !fr.flushed {
		t.Error("Flush should reach the underlying writer")
	}
	if fr.Code != http.StatusBadGateway {
		t.Errorf("status = %d", fr.Code)
	}

	if serve(RequestLogger(logger.NewNop())(ok), httptest.NewRequest(http.MethodGet, "/health", nil)).Code != http.StatusOK {
		t.Error("quiet paths are still served")
	}
}

func TestTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var traceID string
	h := Tracing()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = observability.TraceID(r.Context())
		w.WriteHeader(http.StatusAccepted)
	}))

	serve(h, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != observability.SpanHTTPRequest {
		t.Fatalf("spans = %v, want one http.request span", spans)
	}
	if traceID != spans[0].SpanContext.TraceID().String() {
		t.Errorf("handler saw trace id %q", traceID)
	}
}

func TestMetrics(t *testing.T) {
	m, err := observability.NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	if rec := serve(Metrics(m)(ok), httptest.NewRequest(http.MethodGet, "/version", nil)); rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if rec := serve(Metrics(nil)(ok), httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
		t.Errorf("nil metrics: status = %d", rec.Code)
	}
}
