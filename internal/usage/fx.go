package usage

import (
	"github.com/bdecent/avatarhub/internal/usage/repository"
	"github.com/bdecent/avatarhub/internal/usage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usage.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
