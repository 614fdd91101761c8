package requester

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/brizzai/storefront-gateway/internal/logger"
	"go.uber.org/zap"
)

// Endpoint describes one integration's call contract
type Endpoint[P any, T any] struct {
	Method  string
	Headers map[string]string
	// Resolve validates params and maps them to path segments and query.
	// Missing params must be reported with MissingParam.
	Resolve func(params P) (Route, error)
	Decode  DecodeFunc[T]
	Mock    MockFunc[P]
}

// Observer is notified once per finished call
type Observer interface {
	ObserveCall(service string, mode config.Mode, outcome string, elapsed time.Duration)
}

type invokerOptions struct {
	observer Observer
	fixture  *Response
	auth     AuthManager
}

// Option configures an Invoker
type Option func(*invokerOptions)

// WithObserver reports call outcomes to o
func WithObserver(o Observer) Option {
	return func(opts *invokerOptions) {
		opts.observer = o
	}
}

// WithFixture overrides the simulated response
func WithFixture(resp *Response) Option {
	return func(opts *invokerOptions) {
		opts.fixture = resp
	}
}

// WithAuthManager replaces the credential handling derived from the config
func WithAuthManager(a AuthManager) Option {
	return func(opts *invokerOptions) {
		opts.auth = a
	}
}

type sendFunc[P any] func(ctx context.Context, req *Request, params P) (*Response, error)

// Invoker is the entry point callers use to talk to one integration. It holds
// no per-call state and is safe for concurrent use.
type Invoker[P any, T any] struct {
	cfg      *config.ServiceConfig
	endpoint Endpoint[P, T]
	builder  *HTTPRequestBuilder
	mock     *MockSwitch[P]
	send     sendFunc[P]
	observer Observer
}

// NewInvoker wires an integration to its service config. The live or
// simulated send strategy is chosen here, once, from cfg.Mode.
func NewInvoker[P any, T any](cfg *config.ServiceConfig, transport Transport, endpoint Endpoint[P, T], opts ...Option) *Invoker[P, T] {
	o := &invokerOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.auth == nil {
		o.auth = NewHTTPAuthManager(cfg)
	}

	inv := &Invoker[P, T]{
		cfg:      cfg,
		endpoint: endpoint,
		builder:  NewHTTPRequestBuilder(cfg, o.auth, endpoint.Method, endpoint.Headers),
		mock:     NewMockSwitch(endpoint.Mock, o.fixture),
		observer: o.observer,
	}

	if inv.mock.ShouldMock(cfg) {
		inv.send = func(_ context.Context, _ *Request, params P) (*Response, error) {
			return inv.mock.MockResponse(cfg, params), nil
		}
	} else {
		inv.send = func(ctx context.Context, req *Request, _ P) (*Response, error) {
			if transport == nil {
				return nil, errors.New("no transport configured")
			}
			return transport.Send(ctx, req, cfg.Timeout())
		}
	}
	return inv
}

// Config returns the service config the invoker was built with
func (inv *Invoker[P, T]) Config() *config.ServiceConfig {
	return inv.cfg
}

// Build resolves params into a request without sending it
func (inv *Invoker[P, T]) Build(params P) (*Request, error) {
	if inv.endpoint.Resolve == nil {
		return nil, errors.New("endpoint has no resolver")
	}
	route, err := inv.endpoint.Resolve(params)
	if err != nil {
		return nil, err
	}
	req, err := inv.builder.BuildRequest(route)
	var ce *ConfigurationError
	if err != nil && inv.mock.ShouldMock(inv.cfg) && errors.As(err, &ce) && ce.Setting == inv.builder.baseSetting() {
		// simulated calls never reach the network, an unset base URL is fine
		return &Request{Method: inv.builder.method, Path: routePath(route), Headers: make(http.Header)}, nil
	}
	return req, err
}

// Call runs one invocation. It never panics and never returns an error
// outside the CallResult.
func (inv *Invoker[P, T]) Call(ctx context.Context, params P) (result CallResult[T]) {
	start := time.Now()
	path := ""
	defer func() {
		if r := recover(); r != nil {
			result = Failure[T](internalFailure(fmt.Errorf("panic during %s call: %v", inv.cfg.Name, r)))
		}
		inv.finish(result, path, time.Since(start))
	}()

	req, err := inv.Build(params)
	if err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) {
			return Failure[T](configurationFailure(ce))
		}
		return Failure[T](internalFailure(err))
	}
	path = req.Path

	raw, err := inv.send(ctx, req, params)
	if err != nil {
		return Failure[T](transportFailure(err))
	}

	return ParseResponse(raw, inv.endpoint.Decode)
}

func (inv *Invoker[P, T]) finish(result CallResult[T], path string, elapsed time.Duration) {
	outcome := "ok"
	fields := []zap.Field{
		zap.String("service", inv.cfg.Name),
		zap.String("mode", string(inv.cfg.Mode)),
		zap.String("path", path),
		zap.Duration("elapsed", elapsed),
	}
	if result.Error != nil {
		outcome = string(result.Error.Kind)
		fields = append(fields,
			zap.String("kind", outcome),
			zap.Int("status", result.Error.StatusCode),
			zap.String("error", result.Error.Message),
		)
		logger.Warn("service call failed", fields...)
	} else {
		logger.Info("service call", fields...)
	}

	if inv.observer != nil {
		inv.observer.ObserveCall(inv.cfg.Name, inv.cfg.Mode, outcome, elapsed)
	}
}
