package events

import (
	"github.com/bdecent/avatarhub/internal/events/repository"
	"github.com/bdecent/avatarhub/internal/events/service"
	"go.uber.org/fx"
)

var Module = fx.Module("events.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
