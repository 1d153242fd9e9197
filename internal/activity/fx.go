package activity

import (
	"github.com/bdecent/avatarhub/internal/activity/repository"
	"github.com/bdecent/avatarhub/internal/activity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
