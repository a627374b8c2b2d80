package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/scrooge/internal/clock"
	dailycostdomain "github.com/smallbiznis/scrooge/internal/dailycost/domain"
	"go.uber.org/zap"
)

// Worker keeps yesterday, and the configured backfill window, snapshotted.
type Worker struct {
	job   *Job
	clock clock.Clock
	log   *zap.Logger
	cfg   Config
}

func NewWorker(job *Job, clk clock.Clock, log *zap.Logger, cfg Config) *Worker {
	return &Worker{
		job:   job,
		clock: clk,
		log:   log.Named("snapshot.worker"),
		cfg:   cfg.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("snapshot worker run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce snapshots the pending days oldest first. A day held by another
// runner is left to it.
func (w *Worker) RunOnce(ctx context.Context) error {
	var errs error
	for _, day := range w.pendingDays() {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := w.job.Run(ctx, day)
		switch {
		case err == nil:
		case errors.Is(err, ErrRunInProgress):
			w.log.Debug("snapshot already running", zap.String("date", day.Format(time.DateOnly)))
		default:
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

func (w *Worker) pendingDays() []time.Time {
	yesterday := dailycostdomain.Day(w.clock.Now()).AddDate(0, 0, -1)
	days := make([]time.Time, 0, w.cfg.BackfillDays+1)
	for i := w.cfg.BackfillDays; i >= 0; i-- {
		days = append(days, yesterday.AddDate(0, 0, -i))
	}
	return days
}
