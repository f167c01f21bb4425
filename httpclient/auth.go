package httpclient

import "net/http"

// Auth decorates an outgoing request with credentials.
type Auth func(*http.Request)

// Bearer sends token in the Authorization header.
func Bearer(token string) Auth {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

// HeaderKey sends key in the named header, as Gemini's x-goog-api-key.
func HeaderKey(header, key string) Auth {
	return func(r *http.Request) { r.Header.Set(header, key) }
}
