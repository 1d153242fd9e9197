package assignment

import (
	"context"

	"github.com/bdecent/avatarhub/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("assignment",
	fx.Provide(provideConfig),
	fx.Provide(New),
	fx.Invoke(registerHooks),
)

func provideConfig(cfg config.Config) Config {
	return fromApp(cfg.Assignment)
}

func registerHooks(lc fx.Lifecycle, scheduler *Scheduler, cfg Config) {
	if !cfg.Enabled {
		return
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				scheduler.RunForever(runCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
