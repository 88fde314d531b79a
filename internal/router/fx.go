package router

import (
	"context"

	"github.com/rapidwifi/zone/internal/config"
	"github.com/rapidwifi/zone/internal/router/domain"
	"github.com/rapidwifi/zone/internal/router/routeros"
	"github.com/rapidwifi/zone/internal/router/sim"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewChannel selects the command channel backend at construction time.
// Business code only ever sees domain.Channel.
func NewChannel(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) domain.Channel {
	if cfg.Router.Backend == config.RouterBackendSSH {
		client := routeros.New(cfg.Router, log)
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return client
	}

	log.Named("router").Info("using simulated access point backend")
	return sim.New()
}

var Module = fx.Module("router",
	fx.Provide(NewChannel),
)
