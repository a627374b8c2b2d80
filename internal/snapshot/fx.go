package snapshot

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/scrooge/internal/config"
	"github.com/smallbiznis/scrooge/internal/inventory"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideMetrics(cfg config.Config) *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer, MetricsConfig{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	})
}

func provideCostSource(inv *inventory.Inventory) AssetCostSource { return inv }

func provideHypervisorSource(inv *inventory.Inventory) HypervisorSource { return inv }

// Module provides the job used by the worker and the snapshot command.
var Module = fx.Module("snapshot",
	fx.Provide(ProvideConfig),
	fx.Provide(provideMetrics),
	fx.Provide(provideCostSource),
	fx.Provide(provideHypervisorSource),
	fx.Provide(New),
	fx.Provide(NewWorker),
)

// WorkerModule runs the worker for the lifetime of the application.
var WorkerModule = fx.Module("snapshot.worker",
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, cfg Config, worker *Worker, log *zap.Logger) {
	if !cfg.Enabled {
		log.Named("snapshot.worker").Info("snapshot worker disabled")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go worker.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
