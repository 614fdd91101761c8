// Package app assembles the storefront gateway fx application.
package app

import (
	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/brizzai/storefront-gateway/internal/integrations"
	"github.com/brizzai/storefront-gateway/internal/logger"
	"github.com/brizzai/storefront-gateway/internal/metrics"
	"github.com/brizzai/storefront-gateway/internal/newsletter"
	"github.com/brizzai/storefront-gateway/internal/requester"
	"github.com/brizzai/storefront-gateway/internal/server"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// Options returns every module of the gateway bound to cfg
func Options(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.GetLogger()}
		}),
		requester.Module,
		metrics.Module,
		integrations.Module,
		newsletter.Module,
		server.Module,
	)
}

// New creates the application
func New(cfg *config.Config) *fx.App {
	return fx.New(Options(cfg))
}
