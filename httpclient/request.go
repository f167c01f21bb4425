package httpclient

import "net/http"

// Request is one outbound call. Path is joined to the client's BaseURL
// unless it is absolute. Body may be a *Form, []byte, string or any value
// encoded as JSON.
type Request struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    any
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
