package voucher

import (
	"github.com/rapidwifi/zone/internal/voucher/repository"
	"github.com/rapidwifi/zone/internal/voucher/service"
	"go.uber.org/fx"
)

var Module = fx.Module("voucher.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
