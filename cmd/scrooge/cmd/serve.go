package cmd

import (
	"github.com/smallbiznis/scrooge/internal/inventory"
	"github.com/smallbiznis/scrooge/internal/lock"
	"github.com/smallbiznis/scrooge/internal/migration"
	"github.com/smallbiznis/scrooge/internal/server"
	"github.com/smallbiznis/scrooge/internal/snapshot"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the snapshot worker and the metrics endpoint",
	Long: `Apply pending migrations, then run the daily snapshot worker until interrupted.

The worker snapshots yesterday on every SNAPSHOT_RUN_INTERVAL tick, plus the
SNAPSHOT_BACKFILL_DAYS before it. /metrics and /health are served on METRICS_ADDR.`,
	Run: func(cmd *cobra.Command, args []string) {
		fx.New(append(coreOptions(),
			migration.Module,
			inventory.Module,
			lock.Module,
			snapshot.Module,
			snapshot.WorkerModule,
			server.Module,
		)...).Run()
	},
}
