package notify

import (
	"github.com/rapidwifi/zone/internal/notify/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notify.service",
	fx.Provide(service.NewService),
)
