package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/nyayagpt/nyaya/errors"
)

// Middleware wraps an http.Handler. The server applies its stack around the
// Gin engine, so it sees every route including unknown ones.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares; the first one is outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// writeError answers with the same JSON error body as the API handlers.
func writeError(w http.ResponseWriter, err *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	_ = json.NewEncoder(w).Encode(err.ToResponse())
}
