package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/scrooge/internal/clock"
	dailycostdomain "github.com/smallbiznis/scrooge/internal/dailycost/domain"
	"github.com/smallbiznis/scrooge/internal/editorcontext"
	pricingobjectdomain "github.com/smallbiznis/scrooge/internal/pricingobject/domain"
	"github.com/smallbiznis/scrooge/internal/pricingobject/repository"
	servicedomain "github.com/smallbiznis/scrooge/internal/serviceregistry/domain"
	servicerepository "github.com/smallbiznis/scrooge/internal/serviceregistry/repository"
	"github.com/smallbiznis/scrooge/internal/storetest"
	"github.com/smallbiznis/scrooge/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type fixture struct {
	svc   pricingobjectdomain.Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
}

func setupService(t *testing.T) *fixture {
	t.Helper()
	db := storetest.Open(t)
	node := storetest.Node(t)
	clk := clock.NewFakeClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        repository.Provide(),
		ServiceRepo: servicerepository.Provide(),
	})
	return &fixture{svc: svc, db: db, node: node, clock: clk}
}

func (f *fixture) seedService(t *testing.T, symbol string) snowflake.ID {
	t.Helper()
	now := f.clock.Now()
	s := &servicedomain.Service{ID: f.node.Generate(), Name: symbol, Symbol: symbol, CreatedAt: now, UpdatedAt: now}
	if err := f.db.Create(s).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return s.ID
}

func (f *fixture) seedSnapshot(t *testing.T, po *pricingobjectdomain.PricingObject, day time.Time) {
	t.Helper()
	d := &dailycostdomain.DailyPricingObject{
		ID:              f.node.Generate(),
		Date:            datatypes.Date(day),
		PricingObjectID: po.ID,
		ServiceID:       po.ServiceID,
		CreatedAt:       f.clock.Now(),
	}
	if err := f.db.Omit(clause.Associations).Create(d).Error; err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
}

func TestCreateRecordsAudit(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "backup")
	editor := f.node.Generate()
	ctx := editorcontext.WithEditorID(context.Background(), editor)

	po, err := f.svc.Create(ctx, pricingobjectdomain.CreateRequest{
		Name:      "server-1",
		Type:      pricingobjectdomain.TypeAsset,
		ServiceID: serviceID,
	})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "server-1", got.Name)
	assert.Equal(t, pricingobjectdomain.TypeAsset, got.Type)
	assert.True(t, got.CreatedAt.Equal(f.clock.Now()))
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, editor, *got.CreatedBy)
	require.NotNil(t, got.ModifiedBy)
	assert.Equal(t, editor, *got.ModifiedBy)
}

func TestCreateValidation(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "backup")
	ctx := context.Background()

	cases := []struct {
		name string
		req  pricingobjectdomain.CreateRequest
		want error
	}{
		{"empty name", pricingobjectdomain.CreateRequest{Name: " ", Type: pricingobjectdomain.TypeAsset, ServiceID: serviceID}, pricingobjectdomain.ErrInvalidName},
		{"unknown type", pricingobjectdomain.CreateRequest{Name: "x", Type: 9, ServiceID: serviceID}, pricingobjectdomain.ErrInvalidType},
		{"no service", pricingobjectdomain.CreateRequest{Name: "x", Type: pricingobjectdomain.TypeTenant}, pricingobjectdomain.ErrInvalidService},
		{"missing service", pricingobjectdomain.CreateRequest{Name: "x", Type: pricingobjectdomain.TypeTenant, ServiceID: f.node.Generate()}, pricingobjectdomain.ErrServiceNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegisterAssetStoresEmptyIdentifiersAsNull(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "backup")
	ctx := context.Background()

	for i, assetID := range []int64{1001, 1002} {
		out, err := f.svc.Register(ctx, pricingobjectdomain.RegisterRequest{
			CreateRequest: pricingobjectdomain.CreateRequest{Name: "server", Type: pricingobjectdomain.TypeAsset, ServiceID: serviceID},
			Asset:         &pricingobjectdomain.AssetFields{AssetID: assetID},
		})
		require.NoError(t, err, "asset %d", i)
		require.NotNil(t, out.Asset)
		assert.Nil(t, out.Asset.SN)
		assert.Nil(t, out.Asset.Barcode)
	}

	found, err := f.svc.FindAssetByAssetID(ctx, 1002)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), found.AssetID)
}

func TestRegisterRequiresMatchingExtension(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "vm")
	ctx := context.Background()
	device := int64(7)

	_, err := f.svc.Register(ctx, pricingobjectdomain.RegisterRequest{
		CreateRequest:   pricingobjectdomain.CreateRequest{Name: "vm-1", Type: pricingobjectdomain.TypeAsset, ServiceID: serviceID},
		VirtualDeviceID: &device,
	})
	assert.ErrorIs(t, err, pricingobjectdomain.ErrMissingExtension)

	_, err = f.svc.Register(ctx, pricingobjectdomain.RegisterRequest{
		CreateRequest:   pricingobjectdomain.CreateRequest{Name: "tenant", Type: pricingobjectdomain.TypeTenant, ServiceID: serviceID},
		VirtualDeviceID: &device,
	})
	assert.ErrorIs(t, err, pricingobjectdomain.ErrTypeMismatch)

	out, err := f.svc.Register(ctx, pricingobjectdomain.RegisterRequest{
		CreateRequest:   pricingobjectdomain.CreateRequest{Name: "vm-1", Type: pricingobjectdomain.TypeVirtual, ServiceID: serviceID},
		VirtualDeviceID: &device,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Virtual)

	vi, err := f.svc.FindVirtualByDeviceID(ctx, device)
	require.NoError(t, err)
	assert.Equal(t, out.PricingObject.ID, vi.PricingObjectID)
}

func TestRegisterRollsBackOnDuplicateIdentifier(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "backup")
	ctx := context.Background()

	_, err := f.svc.Register(ctx, pricingobjectdomain.RegisterRequest{
		CreateRequest: pricingobjectdomain.CreateRequest{Name: "server-1", Type: pricingobjectdomain.TypeAsset, ServiceID: serviceID},
		Asset:         &pricingobjectdomain.AssetFields{AssetID: 1001, SN: "SN-1"},
	})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, pricingobjectdomain.RegisterRequest{
		CreateRequest: pricingobjectdomain.CreateRequest{Name: "server-2", Type: pricingobjectdomain.TypeAsset, ServiceID: serviceID},
		Asset:         &pricingobjectdomain.AssetFields{AssetID: 1002, SN: "SN-1"},
	})
	require.ErrorIs(t, err, pricingobjectdomain.ErrDuplicateIdentifier)

	var count int64
	require.NoError(t, f.db.Model(&pricingobjectdomain.PricingObject{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAttachAssetRejectsSecondExtension(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "backup")
	ctx := context.Background()

	po, err := f.svc.Create(ctx, pricingobjectdomain.CreateRequest{Name: "server-1", Type: pricingobjectdomain.TypeAsset, ServiceID: serviceID})
	require.NoError(t, err)

	_, err = f.svc.AttachAsset(ctx, pricingobjectdomain.AttachAssetRequest{PricingObjectID: po.ID, AssetFields: pricingobjectdomain.AssetFields{AssetID: 1001}})
	require.NoError(t, err)

	_, err = f.svc.AttachAsset(ctx, pricingobjectdomain.AttachAssetRequest{PricingObjectID: po.ID, AssetFields: pricingobjectdomain.AssetFields{AssetID: 1002}})
	assert.ErrorIs(t, err, pricingobjectdomain.ErrExtensionExists)
}

func TestAttachAssetDuplicateAssetID(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "backup")
	ctx := context.Background()

	first, err := f.svc.Create(ctx, pricingobjectdomain.CreateRequest{Name: "server-1", Type: pricingobjectdomain.TypeAsset, ServiceID: serviceID})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, pricingobjectdomain.CreateRequest{Name: "server-2", Type: pricingobjectdomain.TypeAsset, ServiceID: serviceID})
	require.NoError(t, err)

	_, err = f.svc.AttachAsset(ctx, pricingobjectdomain.AttachAssetRequest{PricingObjectID: first.ID, AssetFields: pricingobjectdomain.AssetFields{AssetID: 1001}})
	require.NoError(t, err)

	_, err = f.svc.AttachAsset(ctx, pricingobjectdomain.AttachAssetRequest{PricingObjectID: second.ID, AssetFields: pricingobjectdomain.AssetFields{AssetID: 1001}})
	assert.ErrorIs(t, err, pricingobjectdomain.ErrDuplicateIdentifier)
}

func TestAttachTypeMismatch(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "vm")
	ctx := context.Background()

	vm, err := f.svc.Create(ctx, pricingobjectdomain.CreateRequest{Name: "vm-1", Type: pricingobjectdomain.TypeVirtual, ServiceID: serviceID})
	require.NoError(t, err)

	_, err = f.svc.AttachAsset(ctx, pricingobjectdomain.AttachAssetRequest{PricingObjectID: vm.ID, AssetFields: pricingobjectdomain.AssetFields{AssetID: 1}})
	assert.ErrorIs(t, err, pricingobjectdomain.ErrTypeMismatch)

	_, err = f.svc.GetAsset(ctx, vm.ID)
	assert.ErrorIs(t, err, pricingobjectdomain.ErrNotFound)
}

func TestListPaginates(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "backup")
	other := f.seedService(t, "network")
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := f.svc.Create(ctx, pricingobjectdomain.CreateRequest{Name: name, Type: pricingobjectdomain.TypeTenant, ServiceID: serviceID})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, pricingobjectdomain.CreateRequest{Name: "ip", Type: pricingobjectdomain.TypeIPAddress, ServiceID: other})
	require.NoError(t, err)

	req := pricingobjectdomain.ListRequest{ServiceID: &serviceID}
	req.PageSize = 2
	first, err := f.svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, first.PricingObjects, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	req.PageToken = first.NextPageToken
	second, err := f.svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, second.PricingObjects, 1)
	assert.False(t, second.HasMore)
	assert.Equal(t, "c", second.PricingObjects[0].Name)

	ipType := pricingobjectdomain.TypeIPAddress
	byType, err := f.svc.List(ctx, pricingobjectdomain.ListRequest{Type: &ipType})
	require.NoError(t, err)
	require.Len(t, byType.PricingObjects, 1)
	assert.Equal(t, other, byType.PricingObjects[0].ServiceID)

	_, err = f.svc.List(ctx, pricingobjectdomain.ListRequest{Pagination: pagination.Pagination{PageToken: "!!"}})
	assert.ErrorIs(t, err, pricingobjectdomain.ErrInvalidPageToken)
}

func TestUpdateRemarksAndChangeService(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "backup")
	other := f.seedService(t, "archive")
	ctx := context.Background()

	po, err := f.svc.Create(ctx, pricingobjectdomain.CreateRequest{Name: "tenant-1", Type: pricingobjectdomain.TypeTenant, ServiceID: serviceID})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	editor := f.node.Generate()
	ctx = editorcontext.WithEditorID(ctx, editor)

	updated, err := f.svc.UpdateRemarks(ctx, po.ID, "moved to rack 4")
	require.NoError(t, err)
	assert.Equal(t, "moved to rack 4", updated.Remarks)
	assert.True(t, updated.ModifiedAt.Equal(f.clock.Now()))
	require.NotNil(t, updated.ModifiedBy)
	assert.Equal(t, editor, *updated.ModifiedBy)
	assert.Nil(t, updated.CreatedBy)

	moved, err := f.svc.ChangeService(ctx, po.ID, other)
	require.NoError(t, err)
	assert.Equal(t, other, moved.ServiceID)

	_, err = f.svc.ChangeService(ctx, po.ID, f.node.Generate())
	assert.ErrorIs(t, err, pricingobjectdomain.ErrServiceNotFound)

	_, err = f.svc.UpdateRemarks(ctx, f.node.Generate(), "x")
	assert.ErrorIs(t, err, pricingobjectdomain.ErrNotFound)
}

func TestDeleteRejectedOnceSnapshotsExist(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "backup")
	ctx := context.Background()

	out, err := f.svc.Register(ctx, pricingobjectdomain.RegisterRequest{
		CreateRequest: pricingobjectdomain.CreateRequest{Name: "server-1", Type: pricingobjectdomain.TypeAsset, ServiceID: serviceID},
		Asset:         &pricingobjectdomain.AssetFields{AssetID: 1001},
	})
	require.NoError(t, err)
	f.seedSnapshot(t, &out.PricingObject, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	err = f.svc.Delete(ctx, out.PricingObject.ID)
	require.ErrorIs(t, err, pricingobjectdomain.ErrHasSnapshots)

	_, err = f.svc.GetAsset(ctx, out.PricingObject.ID)
	assert.NoError(t, err)
}

func TestDeleteRemovesExtension(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "backup")
	ctx := context.Background()

	out, err := f.svc.Register(ctx, pricingobjectdomain.RegisterRequest{
		CreateRequest: pricingobjectdomain.CreateRequest{Name: "server-1", Type: pricingobjectdomain.TypeAsset, ServiceID: serviceID},
		Asset:         &pricingobjectdomain.AssetFields{AssetID: 1001},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, out.PricingObject.ID))

	_, err = f.svc.Get(ctx, out.PricingObject.ID)
	assert.ErrorIs(t, err, pricingobjectdomain.ErrNotFound)
	_, err = f.svc.FindAssetByAssetID(ctx, 1001)
	assert.ErrorIs(t, err, pricingobjectdomain.ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, out.PricingObject.ID), pricingobjectdomain.ErrNotFound)
}

func TestListActiveBetween(t *testing.T) {
	f := setupService(t)
	serviceID := f.seedService(t, "backup")
	ctx := context.Background()

	active, err := f.svc.Create(ctx, pricingobjectdomain.CreateRequest{Name: "active", Type: pricingobjectdomain.TypeTenant, ServiceID: serviceID})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, pricingobjectdomain.CreateRequest{Name: "idle", Type: pricingobjectdomain.TypeTenant, ServiceID: serviceID})
	require.NoError(t, err)

	f.seedSnapshot(t, active, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	f.seedSnapshot(t, active, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))

	items, err := f.svc.ListActiveBetween(ctx, pricingobjectdomain.ActiveRequest{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, active.ID, items[0].ID)

	items, err = f.svc.ListActiveBetween(ctx, pricingobjectdomain.ActiveRequest{
		From: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = f.svc.ListActiveBetween(ctx, pricingobjectdomain.ActiveRequest{
		From: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, pricingobjectdomain.ErrInvalidDateRange)
}
