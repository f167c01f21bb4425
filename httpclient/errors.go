package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call.
type Kind string

const (
	KindTransport Kind = "transport"
	KindTimeout   Kind = "timeout"
	KindRateLimit Kind = "rate_limit"
	KindAuth      Kind = "auth"
	KindClient    Kind = "client"
	KindServer    Kind = "server"
)

const maxSnippet = 256

// Error is returned for transport failures and non-2xx responses. Its text
// always carries the status code and the start of the body, so "429" and
// provider messages such as "Rate limit reached" survive wrapping.
type Error struct {
	Backend    string
	Kind       Kind
	StatusCode int
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Kind, e.Err)
	}
	msg := fmt.Sprintf("%s: HTTP %d", e.Backend, e.StatusCode)
	if s := strings.TrimSpace(string(e.Body)); s != "" {
		if len(s) > maxSnippet {
			s = s[:maxSnippet] + "..."
		}
		msg += ": " + s
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// classify returns nil for 2xx.
func classify(backend string, status int, body []byte) *Error {
	var kind Kind
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		kind = KindRateLimit
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	case status >= 500:
		kind = KindServer
	default:
		kind = KindClient
	}
	return &Error{Backend: backend, Kind: kind, StatusCode: status, Body: body}
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRateLimit reports whether err is a 429 from a backend.
func IsRateLimit(err error) bool { return kindOf(err) == KindRateLimit }

// IsTimeout reports whether err is a call that ran out of time.
func IsTimeout(err error) bool { return kindOf(err) == KindTimeout }

// IsAuth reports whether err is a 401 or 403.
func IsAuth(err error) bool { return kindOf(err) == KindAuth }
