package middleware

import (
	"net/http"
	"time"

	"github.com/nyayagpt/nyaya/logger"
	"github.com/nyayagpt/nyaya/observability"
)

// Tracing starts an http.request span per request and puts its trace id
// on the context for logging. Quiet paths are not traced.
func Tracing() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			ctx, span := observability.StartSpan(r.Context(), observability.SpanHTTPRequest)
			defer span.End()
			observability.SetSpanAttribute(ctx, observability.AttrHTTPMethod, r.Method)
			observability.SetSpanAttribute(ctx, observability.AttrHTTPRoute, r.URL.Path)
			if id := observability.TraceID(ctx); id != "" {
				ctx = logger.ContextWithTraceID(ctx, id)
			}

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))
			observability.SetSpanAttribute(ctx, observability.AttrHTTPStatus, sw.status)
		})
	}
}

// Metrics records request counts and latency by method, path and status.
func Metrics(m *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			m.RecordRequest(r.Context(), r.Method, r.URL.Path, sw.status, time.Since(start))
		})
	}
}
