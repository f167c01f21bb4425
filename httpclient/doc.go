// Package httpclient is the HTTP client behind the model dialects and the
// whisper sidecar. It joins paths to a base URL, applies headers and
// credentials, encodes JSON and multipart bodies and turns non-2xx
// responses into an *Error.
//
// Calls are never retried here. Rate limiting and retries belong to the
// provider middleware and the pipeline retry executor.
package httpclient
