package snapshot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/scrooge/internal/clock"
	dailycostdomain "github.com/smallbiznis/scrooge/internal/dailycost/domain"
	dailycostrepository "github.com/smallbiznis/scrooge/internal/dailycost/repository"
	dailycostservice "github.com/smallbiznis/scrooge/internal/dailycost/service"
	"github.com/smallbiznis/scrooge/internal/inventory"
	"github.com/smallbiznis/scrooge/internal/lock"
	pricingobjectdomain "github.com/smallbiznis/scrooge/internal/pricingobject/domain"
	pricingobjectrepository "github.com/smallbiznis/scrooge/internal/pricingobject/repository"
	pricingobjectservice "github.com/smallbiznis/scrooge/internal/pricingobject/service"
	servicedomain "github.com/smallbiznis/scrooge/internal/serviceregistry/domain"
	servicerepository "github.com/smallbiznis/scrooge/internal/serviceregistry/repository"
	serviceregistryservice "github.com/smallbiznis/scrooge/internal/serviceregistry/service"
	"github.com/smallbiznis/scrooge/internal/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testFeed = `
assets:
  - asset_id: 1001
    price: "36500"
    depreciation_rate: "25"
    invoice_date: 2023-01-15
virtuals:
  - device_id: 501
    hypervisor_device_id: 77
`

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type env struct {
	job            *Job
	clock          *clock.FakeClock
	locker         *lock.LocalLocker
	metrics        *Metrics
	pricingObjects pricingobjectdomain.Service
	daily          dailycostdomain.Service
	services       servicedomain.Registry
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	db := storetest.Open(t)
	node := storetest.Node(t)
	clk := clock.NewFakeClock(time.Date(2023, 12, 31, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	inv, err := inventory.Parse(strings.NewReader(testFeed))
	require.NoError(t, err)

	services := serviceregistryservice.New(serviceregistryservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: servicerepository.Provide(),
	})
	pricingObjects := pricingobjectservice.New(pricingobjectservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo: pricingobjectrepository.Provide(), ServiceRepo: servicerepository.Provide(),
	})
	daily := dailycostservice.New(dailycostservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo:              dailycostrepository.Provide(),
		PricingObjectRepo: pricingobjectrepository.Provide(),
		ServiceRepo:       servicerepository.Provide(),
	})
	locker := lock.NewLocalLocker(clk)
	metrics := NewMetrics(prometheus.NewRegistry(), MetricsConfig{ServiceName: "scrooge", Environment: "test"})

	job := New(Params{
		Log:            log,
		Clock:          clk,
		PricingObjects: pricingObjects,
		Daily:          daily,
		Costs:          inv,
		Hypervisors:    inv,
		Locker:         locker,
		Metrics:        metrics,
		Config:         Config{BatchSize: 2},
	})
	return &env{
		job:            job,
		clock:          clk,
		locker:         locker,
		metrics:        metrics,
		pricingObjects: pricingObjects,
		daily:          daily,
		services:       services,
	}
}

type inventoryObjects struct {
	hypervisor *pricingobjectdomain.Registered
	vm         *pricingobjectdomain.Registered
	orphanVM   *pricingobjectdomain.Registered
	tenant     *pricingobjectdomain.PricingObject
}

func (e *env) seed(t *testing.T) inventoryObjects {
	t.Helper()
	ctx := context.Background()

	svc, err := e.services.Create(ctx, servicedomain.CreateRequest{Name: "Compute", Symbol: "compute"})
	require.NoError(t, err)

	register := func(name string, typ pricingobjectdomain.Type, asset *pricingobjectdomain.AssetFields, vmDevice *int64) *pricingobjectdomain.Registered {
		out, err := e.pricingObjects.Register(ctx, pricingobjectdomain.RegisterRequest{
			CreateRequest:   pricingobjectdomain.CreateRequest{Name: name, Type: typ, ServiceID: svc.ID},
			Asset:           asset,
			VirtualDeviceID: vmDevice,
		})
		require.NoError(t, err, name)
		return out
	}
	device77 := int64(77)
	vmDevice, orphanDevice := int64(501), int64(502)

	objs := inventoryObjects{
		hypervisor: register("hypervisor-1", pricingobjectdomain.TypeAsset, &pricingobjectdomain.AssetFields{AssetID: 1001, DeviceID: &device77}, nil),
		vm:         register("vm-1", pricingobjectdomain.TypeVirtual, nil, &vmDevice),
		orphanVM:   register("vm-2", pricingobjectdomain.TypeVirtual, nil, &orphanDevice),
	}
	// priced by nobody
	register("server-unknown", pricingobjectdomain.TypeAsset, &pricingobjectdomain.AssetFields{AssetID: 9999}, nil)
	// asset without its extension
	_, err = e.pricingObjects.Create(ctx, pricingobjectdomain.CreateRequest{Name: "server-bare", Type: pricingobjectdomain.TypeAsset, ServiceID: svc.ID})
	require.NoError(t, err)

	objs.tenant, err = e.pricingObjects.Create(ctx, pricingobjectdomain.CreateRequest{Name: "tenant-1", Type: pricingobjectdomain.TypeTenant, ServiceID: svc.ID})
	require.NoError(t, err)

	e.clock.AdvanceDays(5)
	// registered after the snapshot day
	register("server-late", pricingobjectdomain.TypeAsset, &pricingobjectdomain.AssetFields{AssetID: 1002}, nil)
	return objs
}

func TestRunRecordsEveryPass(t *testing.T) {
	e := setupEnv(t)
	objs := e.seed(t)
	ctx := context.Background()

	res, err := e.job.Run(ctx, jan1.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, jan1, res.Date)
	assert.Equal(t, 3, res.Recorded, "hypervisor, vm and tenant")
	assert.Equal(t, 2, res.Deferred, "unpriced asset and unplaced vm")
	assert.Equal(t, 1, res.Flagged, "asset without asset info")
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 0, res.Failed)

	rows, err := e.daily.ListByDate(ctx, jan1)
	require.NoError(t, err)
	assert.Len(t, rows, 6, "late asset is not snapshotted")

	byObject := map[string]dailycostdomain.DailyPricingObject{}
	for _, r := range rows {
		byObject[r.PricingObjectID.String()] = r
	}

	hostDay := byObject[objs.hypervisor.PricingObject.ID.String()]
	hostAsset, err := e.daily.GetAsset(ctx, hostDay.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.000000", hostAsset.DailyCost.StringFixed(6))
	assert.Equal(t, objs.hypervisor.Asset.ID, hostAsset.AssetInfoID)

	vmDay := byObject[objs.vm.PricingObject.ID.String()]
	vmInfo, err := e.daily.GetVirtual(ctx, vmDay.ID)
	require.NoError(t, err)
	assert.Equal(t, hostAsset.ID, vmInfo.HypervisorID)

	orphanDay := byObject[objs.orphanVM.PricingObject.ID.String()]
	_, err = e.daily.GetVirtual(ctx, orphanDay.ID)
	assert.ErrorIs(t, err, dailycostdomain.ErrNotFound)

	assert.Equal(t, float64(1), testutil.ToFloat64(e.metrics.items.WithLabelValues("virtual", string(OutcomeRecorded))))
	assert.Equal(t, float64(1), testutil.ToFloat64(e.metrics.items.WithLabelValues("virtual", string(OutcomeDeferred))))
	assert.Equal(t, float64(1), testutil.ToFloat64(e.metrics.runs.WithLabelValues(runStatusSuccess)))
	assert.Equal(t, float64(jan1.Unix()), testutil.ToFloat64(e.metrics.lastSuccess))
}

func TestRunIsIdempotent(t *testing.T) {
	e := setupEnv(t)
	e.seed(t)
	ctx := context.Background()

	_, err := e.job.Run(ctx, jan1)
	require.NoError(t, err)

	res, err := e.job.Run(ctx, jan1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Recorded)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, 2, res.Deferred)
	assert.Equal(t, 1, res.Flagged)

	rows, err := e.daily.ListByDate(ctx, jan1)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestRunRespectsLock(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()

	_, ok, err := e.locker.TryLock(ctx, lockKey(jan1), time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = e.job.Run(ctx, jan1)
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Equal(t, float64(1), testutil.ToFloat64(e.metrics.runs.WithLabelValues(runStatusInProgress)))

	_, err = e.job.Run(ctx, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestWorkerRunsYesterdayAndBackfill(t *testing.T) {
	e := setupEnv(t)
	e.seed(t)
	ctx := context.Background()

	// clock sits at 2024-01-05 09:00 after seeding
	w := NewWorker(e.job, e.clock, zap.NewNop(), Config{BackfillDays: 2})
	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	}, w.pendingDays())

	require.NoError(t, w.RunOnce(ctx))

	for _, day := range w.pendingDays() {
		rows, err := e.daily.ListByDate(ctx, day)
		require.NoError(t, err)
		assert.Len(t, rows, 6, day.Format(time.DateOnly))
	}

	// just past midnight the window slides by a day
	e.clock.Set(time.Date(2024, 1, 6, 0, 30, 0, 0, time.UTC))
	days := w.pendingDays()
	require.Len(t, days, 3)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), days[2])
}
