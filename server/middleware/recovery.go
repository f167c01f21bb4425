package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/nyayagpt/nyaya/errors"
	"github.com/nyayagpt/nyaya/logger"
)

// Recovery turns a panicking handler into a 500 INTERNAL_ERROR response and
// logs the stack.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("handler panicked", logger.Fields(
					logger.FieldError, fmt.Sprint(rec),
					logger.FieldRequestID, r.Header.Get(HeaderRequestID),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				))
				writeError(w, apperrors.Internal(fmt.Errorf("panic: %v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
