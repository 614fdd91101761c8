// Package server runs the storefront HTTP server.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/brizzai/storefront-gateway/internal/apidoc"
	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/brizzai/storefront-gateway/internal/integrations/pagecontent"
	"github.com/brizzai/storefront-gateway/internal/integrations/userlookup"
	"github.com/brizzai/storefront-gateway/internal/logger"
	"github.com/brizzai/storefront-gateway/internal/metrics"
	"github.com/brizzai/storefront-gateway/internal/newsletter"
	"github.com/brizzai/storefront-gateway/internal/server/handler"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for server shutdown
	shutdownTimeout = 5 * time.Second
	defaultTimeout  = 30 * time.Second
)

// Server wraps the storefront http.Server
type Server struct {
	config   *config.Config
	handler  http.Handler
	http     *http.Server
	listener net.Listener

	shutdowner fx.Shutdowner
}

// NewServer creates a server for the given handler. When shutdowner is set a
// fatal serve error stops the application.
func NewServer(cfg *config.Config, h http.Handler, shutdowner fx.Shutdowner) *Server {
	timeout := defaultTimeout
	if cfg.Server.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Server.Timeout); err == nil {
			timeout = d
		} else {
			logger.Warn("Invalid server timeout, using default", zap.String("timeout", cfg.Server.Timeout))
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return &Server{
		config:  cfg,
		handler: h,
		http: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: timeout,
			ReadTimeout:       timeout,
			WriteTimeout:      timeout,
		},
		shutdowner: shutdowner,
	}
}

// Start binds the listener and serves in the background
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	s.listener = ln

	logger.Info("Starting server",
		zap.String("address", ln.Addr().String()),
		zap.String("version", s.config.Server.Version),
	)

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", zap.Error(err))
			if s.shutdowner != nil {
				_ = s.shutdowner.Shutdown(fx.ExitCode(1))
			}
		}
	}()
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("Shutting down server", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.http.Addr
	}
	return s.listener.Addr().String()
}

// HandlerParams are the fx inputs of the storefront handler
type HandlerParams struct {
	fx.In

	Config     *config.Config
	Users      *userlookup.Client
	Pages      *pagecontent.Client
	Newsletter *newsletter.Service
	Metrics    *metrics.Metrics
}

// NewHTTPHandler builds the storefront routes
func NewHTTPHandler(p HandlerParams) (http.Handler, error) {
	doc, err := json.Marshal(apidoc.Document(p.Config.Server.Version))
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document: %w", err)
	}

	h := handler.NewHandler(handler.Deps{
		SiteID:      p.Config.Storefront.SiteID,
		Users:       p.Users,
		Pages:       p.Pages,
		Newsletter:  p.Newsletter,
		Observer:    p.Metrics,
		Metrics:     p.Metrics.Handler(),
		OpenAPIJSON: doc,
	})
	return h.CreateHTTPHandler(), nil
}

func register(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
}

// Module provides the HTTP server and starts it with the application
var Module = fx.Module("server",
	fx.Provide(
		NewHTTPHandler,
		NewServer,
	),
	fx.Invoke(register),
)
