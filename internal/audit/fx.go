package audit

import (
	"github.com/rapidwifi/zone/internal/audit/repository"
	"github.com/rapidwifi/zone/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
