package retention

import (
	"context"
	"time"

	"github.com/costmgmt/koku/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("retention",
	fx.Provide(
		func(cfg config.Config) Config {
			return Config{
				RetentionMonths: cfg.RetentionMonths,
				PollInterval:    time.Duration(cfg.RetentionPollSeconds) * time.Second,
			}
		},
		NewWorker,
	),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, worker *Worker) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
