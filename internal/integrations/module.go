// Package integrations wires the remote service clients into the fx graph.
// Each client is built once at startup from its ServiceConfig.
package integrations

import (
	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/brizzai/storefront-gateway/internal/fixtures"
	"github.com/brizzai/storefront-gateway/internal/integrations/pagecontent"
	"github.com/brizzai/storefront-gateway/internal/integrations/userlookup"
	"github.com/brizzai/storefront-gateway/internal/logger"
	"github.com/brizzai/storefront-gateway/internal/metrics"
	"github.com/brizzai/storefront-gateway/internal/requester"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds what every client needs
type Params struct {
	fx.In

	Config    *config.Config
	Transport requester.Transport
	Fixtures  *fixtures.Set
	Metrics   *metrics.Metrics
}

func options(p Params, svc *config.ServiceConfig) []requester.Option {
	if svc.Simulated() {
		logger.Info("Integration running in simulate mode", zap.String("service", svc.Name))
	}
	return []requester.Option{
		requester.WithObserver(p.Metrics),
		p.Fixtures.Option(svc.Name),
	}
}

// NewUserLookup builds the user lookup client
func NewUserLookup(p Params) *userlookup.Client {
	svc := &p.Config.Services.UserLookup
	return userlookup.NewClient(svc, p.Transport, options(p, svc)...)
}

// NewPageContent builds the page content client
func NewPageContent(p Params) *pagecontent.Client {
	svc := &p.Config.Services.PageContent
	return pagecontent.NewClient(svc, p.Transport, options(p, svc)...)
}

// LoadFixtures reads the simulation fixtures named in the config
func LoadFixtures(cfg *config.Config) (*fixtures.Set, error) {
	return fixtures.Load(cfg.MockFixtures)
}

// Module provides the integration clients
var Module = fx.Module("integrations",
	fx.Provide(
		LoadFixtures,
		NewUserLookup,
		NewPageContent,
	),
)
