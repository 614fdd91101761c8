package requester

import (
	"net/http"

	"github.com/brizzai/storefront-gateway/internal/config"
)

// MockFunc produces the canned response for a set of call parameters. It
// must be deterministic: equal params give equal responses.
type MockFunc[P any] func(params P) *Response

// MockSwitch answers calls for services running in simulate mode
type MockSwitch[P any] struct {
	respond MockFunc[P]
	fixture *Response
}

// NewMockSwitch creates a MockSwitch backed by respond. A non-nil fixture
// replaces the generated response for every call.
func NewMockSwitch[P any](respond MockFunc[P], fixture *Response) *MockSwitch[P] {
	return &MockSwitch[P]{respond: respond, fixture: fixture}
}

// ShouldMock reports whether the real transport must be bypassed
func (m *MockSwitch[P]) ShouldMock(cfg *config.ServiceConfig) bool {
	return cfg != nil && cfg.Simulated()
}

// MockResponse returns a response shaped exactly like one read off the wire.
// The result is a fresh copy and can be consumed freely.
func (m *MockSwitch[P]) MockResponse(_ *config.ServiceConfig, params P) *Response {
	var src *Response
	switch {
	case m.fixture != nil:
		src = m.fixture
	case m.respond != nil:
		src = m.respond(params)
	}
	if src == nil {
		src = &Response{}
	}

	resp := &Response{
		StatusCode:    src.StatusCode,
		StatusMessage: src.StatusMessage,
		Headers:       src.Headers.Clone(),
		Body:          append([]byte(nil), src.Body...),
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = http.StatusOK
	}
	if resp.StatusMessage == "" {
		resp.StatusMessage = http.StatusText(resp.StatusCode)
	}
	if resp.Headers == nil {
		resp.Headers = make(http.Header)
	}
	return resp
}
