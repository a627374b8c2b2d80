// Package snapshot writes the daily cost snapshot of every pricing object.
package snapshot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/scrooge/internal/clock"
	"github.com/smallbiznis/scrooge/internal/costing"
	dailycostdomain "github.com/smallbiznis/scrooge/internal/dailycost/domain"
	"github.com/smallbiznis/scrooge/internal/inventory"
	"github.com/smallbiznis/scrooge/internal/lock"
	pricingobjectdomain "github.com/smallbiznis/scrooge/internal/pricingobject/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrInvalidDate   = errors.New("invalid_snapshot_date")
	ErrRunInProgress = errors.New("snapshot_run_in_progress")
)

// Outcome classifies what a run did with one pricing object.
type Outcome string

const (
	OutcomeRecorded Outcome = "recorded"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeDeferred Outcome = "deferred"
	OutcomeFlagged  Outcome = "flagged"
	OutcomeFailed   Outcome = "failed"
)

// AssetCostSource prices an asset for one day.
type AssetCostSource interface {
	AssetCost(ctx context.Context, asset pricingobjectdomain.AssetInfo, date time.Time) (costing.DailyCost, error)
}

// HypervisorSource tells which physical device hosted a VM on a day.
type HypervisorSource interface {
	HypervisorDeviceID(ctx context.Context, virtual pricingobjectdomain.VirtualInfo, date time.Time) (int64, error)
}

// Passes run in this order so virtuals find their hypervisor's record.
var passes = []pricingobjectdomain.Type{
	pricingobjectdomain.TypeAsset,
	pricingobjectdomain.TypeVirtual,
	pricingobjectdomain.TypeTenant,
	pricingobjectdomain.TypeIPAddress,
}

type Result struct {
	Date     time.Time `json:"date"`
	Recorded int       `json:"recorded"`
	Skipped  int       `json:"skipped"`
	Deferred int       `json:"deferred"`
	Flagged  int       `json:"flagged"`
	Failed   int       `json:"failed"`
}

func (r *Result) add(o Outcome) {
	switch o {
	case OutcomeRecorded:
		r.Recorded++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeDeferred:
		r.Deferred++
	case OutcomeFlagged:
		r.Flagged++
	case OutcomeFailed:
		r.Failed++
	}
}

type Params struct {
	fx.In

	Log            *zap.Logger
	Clock          clock.Clock
	PricingObjects pricingobjectdomain.Service
	Daily          dailycostdomain.Service
	Costs          AssetCostSource
	Hypervisors    HypervisorSource
	Locker         lock.Locker
	Metrics        *Metrics `optional:"true"`
	Config         Config   `optional:"true"`
}

type Job struct {
	log            *zap.Logger
	clock          clock.Clock
	pricingObjects pricingobjectdomain.Service
	daily          dailycostdomain.Service
	costs          AssetCostSource
	hypervisors    HypervisorSource
	locker         lock.Locker
	metrics        *Metrics
	cfg            Config
}

func New(p Params) *Job {
	return &Job{
		log:            p.Log.Named("snapshot.job"),
		clock:          p.Clock,
		pricingObjects: p.PricingObjects,
		daily:          p.Daily,
		costs:          p.Costs,
		hypervisors:    p.Hypervisors,
		locker:         p.Locker,
		metrics:        p.Metrics,
		cfg:            p.Config.withDefaults(),
	}
}

// Run snapshots every pricing object that existed on date. Rerunning a date
// only fills in what is missing.
func (j *Job) Run(ctx context.Context, date time.Time) (*Result, error) {
	day := dailycostdomain.Day(date)
	if day.IsZero() {
		return nil, ErrInvalidDate
	}

	key := lockKey(day)
	token, ok, err := j.locker.TryLock(ctx, key, j.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		j.metrics.observeRun(runStatusInProgress, 0)
		return nil, ErrRunInProgress
	}
	defer func() {
		if err := j.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			j.log.Warn("release snapshot lock", zap.String("key", key), zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, j.cfg.RunTimeout)
	defer cancel()

	start := j.clock.Now()
	res := &Result{Date: day}
	log := j.log.With(zap.String("date", day.Format(time.DateOnly)))
	log.Info("snapshot run started")

	for _, typ := range passes {
		if err := j.runPass(ctx, day, typ, res); err != nil {
			j.metrics.observeRun(runStatusFailed, j.clock.Now().Sub(start))
			log.Error("snapshot run aborted", zap.String("pass", typ.String()), zap.Error(err))
			return res, err
		}
	}

	elapsed := j.clock.Now().Sub(start)
	j.metrics.observeRun(runStatusSuccess, elapsed)
	if res.Failed == 0 {
		j.metrics.markSuccess(day)
	}
	log.Info("snapshot run finished",
		zap.Int("recorded", res.Recorded),
		zap.Int("skipped", res.Skipped),
		zap.Int("deferred", res.Deferred),
		zap.Int("flagged", res.Flagged),
		zap.Int("failed", res.Failed),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (j *Job) runPass(ctx context.Context, day time.Time, typ pricingobjectdomain.Type, res *Result) error {
	rows, err := j.daily.ListByDate(ctx, day)
	if err != nil {
		return err
	}
	existing := make(map[snowflake.ID]*dailycostdomain.DailyPricingObject, len(rows))
	for i := range rows {
		existing[rows[i].PricingObjectID] = &rows[i]
	}

	nextDay := day.AddDate(0, 0, 1)
	req := pricingobjectdomain.ListRequest{Type: &typ}
	req.PageSize = j.cfg.BatchSize
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := j.pricingObjects.List(ctx, req)
		if err != nil {
			return err
		}
		for i := range page.PricingObjects {
			po := &page.PricingObjects[i]
			if !po.CreatedAt.Before(nextDay) {
				continue
			}
			outcome := j.snapshot(ctx, day, po, existing)
			res.add(outcome)
			j.metrics.incItem(typ.String(), outcome)
		}

		if !page.HasMore {
			return nil
		}
		req.PageToken = page.NextPageToken
	}
}

// snapshot records the daily row of po if missing, then its type extension.
func (j *Job) snapshot(ctx context.Context, day time.Time, po *pricingobjectdomain.PricingObject, existing map[snowflake.ID]*dailycostdomain.DailyPricingObject) Outcome {
	log := j.log.With(
		zap.String("pricing_object_id", po.ID.String()),
		zap.String("type", po.Type.String()),
		zap.String("date", day.Format(time.DateOnly)),
	)

	daily, created := existing[po.ID], false
	if daily == nil {
		d, err := j.daily.Record(ctx, dailycostdomain.RecordRequest{Date: day, PricingObjectID: po.ID})
		switch {
		case errors.Is(err, dailycostdomain.ErrAlreadyRecorded):
			// another writer won; its run completes the extension
			return OutcomeSkipped
		case err != nil:
			log.Error("record daily pricing object", zap.Error(err))
			return OutcomeFailed
		}
		daily, created = d, true
		existing[po.ID] = d
	}

	var (
		step extensionStep
		err  error
	)
	switch po.Type {
	case pricingobjectdomain.TypeAsset:
		step, err = j.attachAsset(ctx, day, po, daily)
	case pricingobjectdomain.TypeVirtual:
		step, err = j.attachVirtual(ctx, day, po, daily, existing)
	default:
		step = stepNone
	}

	switch step {
	case stepFailed:
		log.Error("attach daily extension", zap.Error(err))
		return OutcomeFailed
	case stepFlagged:
		log.Warn("pricing object flagged", zap.Error(err))
		return OutcomeFlagged
	case stepDeferred:
		log.Info("daily extension deferred", zap.Error(err))
		return OutcomeDeferred
	case stepWritten:
		return OutcomeRecorded
	}
	if created {
		return OutcomeRecorded
	}
	return OutcomeSkipped
}

type extensionStep int

const (
	stepNone extensionStep = iota
	stepPresent
	stepWritten
	stepDeferred
	stepFlagged
	stepFailed
)

func (j *Job) attachAsset(ctx context.Context, day time.Time, po *pricingobjectdomain.PricingObject, daily *dailycostdomain.DailyPricingObject) (extensionStep, error) {
	if step, err := present(j.daily.GetAsset(ctx, daily.ID)); step != stepNone {
		return step, err
	}

	info, err := j.pricingObjects.GetAsset(ctx, po.ID)
	if errors.Is(err, pricingobjectdomain.ErrNotFound) {
		return stepFlagged, errors.New("asset has no asset info")
	}
	if err != nil {
		return stepFailed, err
	}

	cost, err := j.costs.AssetCost(ctx, *info, day)
	switch {
	case errors.Is(err, inventory.ErrUnknownAsset), errors.Is(err, costing.ErrNotYetAcquired):
		return stepDeferred, err
	case err != nil:
		return stepFlagged, err
	}

	_, err = j.daily.RecordAsset(ctx, dailycostdomain.RecordAssetRequest{
		DailyPricingObjectID: daily.ID,
		DepreciationRate:     cost.DepreciationRate,
		IsDepreciated:        cost.IsDepreciated,
		DailyCost:            cost.DailyCost,
	})
	return classifyWrite(err)
}

func (j *Job) attachVirtual(ctx context.Context, day time.Time, po *pricingobjectdomain.PricingObject, daily *dailycostdomain.DailyPricingObject, existing map[snowflake.ID]*dailycostdomain.DailyPricingObject) (extensionStep, error) {
	if step, err := present(j.daily.GetVirtual(ctx, daily.ID)); step != stepNone {
		return step, err
	}

	info, err := j.pricingObjects.GetVirtual(ctx, po.ID)
	if errors.Is(err, pricingobjectdomain.ErrNotFound) {
		return stepFlagged, errors.New("virtual has no virtual info")
	}
	if err != nil {
		return stepFailed, err
	}

	hostDevice, err := j.hypervisors.HypervisorDeviceID(ctx, *info, day)
	if err != nil {
		return stepDeferred, err
	}
	host, err := j.pricingObjects.FindAssetByDeviceID(ctx, hostDevice)
	if errors.Is(err, pricingobjectdomain.ErrNotFound) {
		return stepDeferred, dailycostdomain.ErrHypervisorNotFound
	}
	if err != nil {
		return stepFailed, err
	}

	hostDaily := existing[host.PricingObjectID]
	if hostDaily == nil {
		return stepDeferred, dailycostdomain.ErrHypervisorNotFound
	}
	hostAsset, err := j.daily.GetAsset(ctx, hostDaily.ID)
	if errors.Is(err, dailycostdomain.ErrNotFound) {
		return stepDeferred, dailycostdomain.ErrHypervisorNotFound
	}
	if err != nil {
		return stepFailed, err
	}

	_, err = j.daily.RecordVirtual(ctx, dailycostdomain.RecordVirtualRequest{
		DailyPricingObjectID: daily.ID,
		HypervisorID:         hostAsset.ID,
	})
	return classifyWrite(err)
}

// present reports stepPresent when the extension lookup found a row and
// stepNone when it still has to be written.
func present[T any](_ *T, err error) (extensionStep, error) {
	switch {
	case err == nil:
		return stepPresent, nil
	case errors.Is(err, dailycostdomain.ErrNotFound):
		return stepNone, nil
	default:
		return stepFailed, err
	}
}

func classifyWrite(err error) (extensionStep, error) {
	switch {
	case err == nil:
		return stepWritten, nil
	case errors.Is(err, dailycostdomain.ErrExtensionExists):
		return stepPresent, nil
	case errors.Is(err, dailycostdomain.ErrHypervisorNotFound):
		return stepDeferred, err
	case errors.Is(err, dailycostdomain.ErrTypeMismatch),
		errors.Is(err, dailycostdomain.ErrAssetInfoMissing),
		errors.Is(err, dailycostdomain.ErrHypervisorDateMismatch),
		errors.Is(err, dailycostdomain.ErrNegativeAmount),
		errors.Is(err, dailycostdomain.ErrAmountOutOfRange):
		return stepFlagged, err
	default:
		return stepFailed, err
	}
}

func lockKey(day time.Time) string {
	return strings.Join([]string{"scrooge", "snapshot", day.Format(time.DateOnly)}, ":")
}
