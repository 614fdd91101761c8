package requester

import (
	"net/http"
	"net/url"
)

// Route is the integration-specific part of a request: the path segments
// appended to the base URL and an optional query.
type Route struct {
	Segments []string
	Query    url.Values
}

// Request represents a fully built outbound HTTP request. It is produced
// fresh per call and consumed once by a Transport.
type Request struct {
	Method  string
	URL     string
	Path    string // URL path without host or query, safe for logs
	Headers http.Header
	Body    []byte
}

// Response represents a raw HTTP response, real or simulated
type Response struct {
	StatusCode    int
	StatusMessage string
	Headers       http.Header
	Body          []byte
}

// CallResult is the single normalized outcome of an invocation. Exactly one
// of Payload and Error is set, and OK is true iff Payload is set.
type CallResult[T any] struct {
	OK      bool       `json:"ok"`
	Payload *T         `json:"payload,omitempty"`
	Error   *CallError `json:"error,omitempty"`
}

// Success wraps a payload into a successful result
func Success[T any](payload T) CallResult[T] {
	return CallResult[T]{OK: true, Payload: &payload}
}

// Failure wraps an error into a failed result
func Failure[T any](err *CallError) CallResult[T] {
	return CallResult[T]{Error: err}
}
