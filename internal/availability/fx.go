package availability

import (
	availabilitydomain "github.com/bdecent/avatarhub/internal/availability/domain"
	"github.com/bdecent/avatarhub/internal/availability/service"
	"github.com/bdecent/avatarhub/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("availability",
	fx.Provide(service.NewEvaluator),
	fx.Provide(providePolicy),
)

func providePolicy(cfg config.Config, evaluator *service.Evaluator) availabilitydomain.Policy {
	if cfg.ProPolicy {
		return evaluator
	}
	return service.NoopPolicy{}
}
