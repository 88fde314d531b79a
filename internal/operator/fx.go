package operator

import (
	"github.com/rapidwifi/zone/internal/operator/repository"
	"github.com/rapidwifi/zone/internal/operator/service"
	"go.uber.org/fx"
)

var Module = fx.Module("operator.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
