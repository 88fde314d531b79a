package payment

import (
	"github.com/rapidwifi/zone/internal/payment/repository"
	"github.com/rapidwifi/zone/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
