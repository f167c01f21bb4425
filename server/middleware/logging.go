package middleware

import (
	"net/http"
	"time"

	"github.com/nyayagpt/nyaya/logger"
)

// quietPaths are polled by health checkers and skip logging and tracing.
var quietPaths = map[string]bool{
	"/health":  true,
	"/version": true,
}

// slowRequest marks pipeline runs that took long enough to worry about.
const slowRequest = time.Minute

// RequestLogger logs one line per request once the handler returns. 5xx
// responses log at error, 4xx at warn. Request and trace ids come from the
// context set up by the earlier middleware.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			took := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				logger.FieldDuration, took.Milliseconds(),
			)
			if took > slowRequest {
				fields["slow"] = true
			}

			l := log.WithContext(r.Context())
			switch {
			case sw.status >= http.StatusInternalServerError:
				l.Error("request completed", fields)
			case sw.status >= http.StatusBadRequest:
				l.Warn("request completed", fields)
			default:
				l.Info("request completed", fields)
			}
		})
	}
}
