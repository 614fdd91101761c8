package newsletter

import (
	"context"
	"fmt"

	"github.com/brizzai/storefront-gateway/internal/config"
	"github.com/brizzai/storefront-gateway/internal/logger"
	"github.com/brizzai/storefront-gateway/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewStore opens the store selected by newsletter.driver
func NewStore(lc fx.Lifecycle, cfg *config.Config) (Store, error) {
	var store Store
	switch cfg.Newsletter.Driver {
	case config.NewsletterDriverSQLite:
		s, err := OpenSQLiteStore(cfg.Newsletter.DSN)
		if err != nil {
			return nil, err
		}
		store = s
	case config.NewsletterDriverRedis:
		r := cfg.Newsletter.Redis
		s := NewRedisStore(r.Addr, r.Password, r.DB)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := s.Ping(ctx); err != nil {
					logger.Warn("Newsletter redis not reachable yet", zap.String("addr", r.Addr), zap.Error(err))
				}
				return nil
			},
		})
		store = s
	default:
		return nil, fmt.Errorf("unsupported newsletter driver: %s", cfg.Newsletter.Driver)
	}

	logger.Info("Newsletter store ready", zap.String("driver", string(cfg.Newsletter.Driver)))
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}

func newService(store Store, m *metrics.Metrics) *Service {
	return NewService(store, m)
}

// Module provides the newsletter dependencies
var Module = fx.Module("newsletter",
	fx.Provide(
		NewStore,
		newService,
	),
)
