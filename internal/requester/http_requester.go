package requester

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Transport executes one built request within a timeout
type Transport interface {
	Send(ctx context.Context, req *Request, timeout time.Duration) (*Response, error)
}

// HTTPDoer is the subset of *http.Client used by HTTPRequester
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPRequester is the live Transport. It makes exactly one attempt per
// request and never looks at the status code.
type HTTPRequester struct {
	client HTTPDoer
}

// NewHTTPRequester creates a new HTTPRequester. A nil client uses a plain
// *http.Client; the per-call timeout is enforced through the context.
func NewHTTPRequester(client HTTPDoer) *HTTPRequester {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPRequester{client: client}
}

// Send performs the request. The timeout bounds connect, headers and body
// read together; expiry is reported as a TransportError of kind timeout.
func (r *HTTPRequester) Send(ctx context.Context, req *Request, timeout time.Duration) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &TransportError{Kind: TransportIO, Err: redact(fmt.Errorf("failed to create HTTP request: %w", err), req, nil)}
	}
	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, classify(ctx, redact(fmt.Errorf("request failed: %w", err), req, httpReq.URL))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, redact(fmt.Errorf("failed to read response body: %w", err), req, httpReq.URL))
	}

	return &Response{
		StatusCode:    resp.StatusCode,
		StatusMessage: statusMessage(resp),
		Headers:       resp.Header,
		Body:          bodyBytes,
	}, nil
}

func classify(ctx context.Context, err error) *TransportError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	return &TransportError{Kind: TransportIO, Err: err}
}

// redactedError keeps the original chain for errors.Is/As but reports a
// message without the remote host, port or query.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

// redact rewrites err so its text only names the request path
func redact(err error, req *Request, target *url.URL) error {
	msg := err.Error()

	var ue *url.Error
	if errors.As(err, &ue) {
		msg = strings.Replace(msg, ue.Error(), fmt.Sprintf("%s %s: %v", ue.Op, req.Path, ue.Err), 1)
	}

	var secrets []string
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Addr != nil {
		secrets = append(secrets, opErr.Addr.String())
	}
	if target != nil {
		secrets = append(secrets, target.Host, target.Hostname())
	}
	if req.URL != "" {
		secrets = append(secrets, req.URL)
	}
	for _, s := range secrets {
		if s != "" {
			msg = strings.ReplaceAll(msg, s, "[remote]")
		}
	}
	return &redactedError{msg: msg, err: err}
}

// statusMessage strips the numeric prefix from resp.Status ("404 Not Found")
func statusMessage(resp *http.Response) string {
	if resp.Status == "" {
		return http.StatusText(resp.StatusCode)
	}
	prefix := fmt.Sprintf("%d ", resp.StatusCode)
	if len(resp.Status) > len(prefix) && resp.Status[:len(prefix)] == prefix {
		return resp.Status[len(prefix):]
	}
	return resp.Status
}
