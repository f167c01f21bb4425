// Package server provides the HTTP server: a Gin engine for routes, wrapped
// in net/http middleware and served with h2c.
//
// # Middleware
//
// Built-in middleware (server/middleware), outermost first:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: request body size limit
//   - RateLimit: per-client token buckets on the pipeline endpoints
//   - RequestLogger: request logging with duration
//
// # Endpoints
//
// Built-in endpoints (server/endpoint): /health, /info and /version. The
// legal API handlers live in server/endpoint as well and are mounted by the
// application.
package server
