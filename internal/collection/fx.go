package collection

import (
	"github.com/bdecent/avatarhub/internal/collection/repository"
	"github.com/bdecent/avatarhub/internal/collection/service"
	"go.uber.org/fx"
)

var Module = fx.Module("collection.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
