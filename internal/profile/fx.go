package profile

import (
	"github.com/rapidwifi/zone/internal/profile/repository"
	"github.com/rapidwifi/zone/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
