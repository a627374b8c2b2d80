package cmd

import (
	"fmt"
	"time"

	"github.com/smallbiznis/scrooge/internal/clock"
	"github.com/smallbiznis/scrooge/internal/inventory"
	"github.com/smallbiznis/scrooge/internal/lock"
	"github.com/smallbiznis/scrooge/internal/snapshot"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var snapshotDate string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record the daily snapshots for one day",
	Long: `Record a DailyPricingObject and its daily extension for every pricing object
that existed on the given day. Defaults to yesterday (UTC). Objects already
recorded for the day are skipped, so the command can be rerun safely.`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotDate, "date", "", "day to snapshot, YYYY-MM-DD (default yesterday)")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	quietLogs()
	ctx := commandContext(cmd)

	var (
		job *snapshot.Job
		clk clock.Clock
	)
	app, err := startApp(ctx,
		inventory.Module,
		lock.Module,
		snapshot.Module,
		fx.Populate(&job, &clk),
	)
	if err != nil {
		return err
	}
	defer stopApp(app)

	day := clk.Now().UTC().AddDate(0, 0, -1)
	if snapshotDate != "" {
		day, err = time.Parse(time.DateOnly, snapshotDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", snapshotDate, err)
		}
	}

	res, err := job.Run(ctx, day)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}
