package avatar

import (
	"github.com/bdecent/avatarhub/internal/avatar/repository"
	"github.com/bdecent/avatarhub/internal/avatar/service"
	"go.uber.org/fx"
)

var Module = fx.Module("avatar.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
