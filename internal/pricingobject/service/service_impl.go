package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/scrooge/internal/clock"
	"github.com/smallbiznis/scrooge/internal/editorcontext"
	"github.com/smallbiznis/scrooge/internal/logger"
	pricingobjectdomain "github.com/smallbiznis/scrooge/internal/pricingobject/domain"
	servicedomain "github.com/smallbiznis/scrooge/internal/serviceregistry/domain"
	"github.com/smallbiznis/scrooge/pkg/db"
	"github.com/smallbiznis/scrooge/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        pricingobjectdomain.Repository
	ServiceRepo servicedomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        pricingobjectdomain.Repository
	serviceRepo servicedomain.Repository
}

func New(p Params) pricingobjectdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("pricingobject.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		serviceRepo: p.ServiceRepo,
	}
}

func (s *Service) Create(ctx context.Context, req pricingobjectdomain.CreateRequest) (*pricingobjectdomain.PricingObject, error) {
	var entity *pricingobjectdomain.PricingObject
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entity, err = s.create(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger(ctx).Info("pricing object created",
		zap.String("pricing_object_id", entity.ID.String()),
		zap.String("type", entity.Type.String()),
		zap.String("service_id", entity.ServiceID.String()),
	)
	return entity, nil
}

func (s *Service) Register(ctx context.Context, req pricingobjectdomain.RegisterRequest) (*pricingobjectdomain.Registered, error) {
	switch req.Type {
	case pricingobjectdomain.TypeAsset:
		if req.Asset == nil || req.VirtualDeviceID != nil {
			return nil, pricingobjectdomain.ErrMissingExtension
		}
	case pricingobjectdomain.TypeVirtual:
		if req.VirtualDeviceID == nil || req.Asset != nil {
			return nil, pricingobjectdomain.ErrMissingExtension
		}
	default:
		if req.Asset != nil || req.VirtualDeviceID != nil {
			return nil, pricingobjectdomain.ErrTypeMismatch
		}
	}

	out := &pricingobjectdomain.Registered{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := s.create(ctx, tx, req.CreateRequest)
		if err != nil {
			return err
		}
		out.PricingObject = *po

		switch {
		case req.Asset != nil:
			out.Asset, err = s.attachAsset(ctx, tx, pricingobjectdomain.AttachAssetRequest{
				PricingObjectID: po.ID,
				AssetFields:     *req.Asset,
			})
		case req.VirtualDeviceID != nil:
			out.Virtual, err = s.attachVirtual(ctx, tx, pricingobjectdomain.AttachVirtualRequest{
				PricingObjectID: po.ID,
				DeviceID:        *req.VirtualDeviceID,
			})
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger(ctx).Info("pricing object registered",
		zap.String("pricing_object_id", out.PricingObject.ID.String()),
		zap.String("type", out.PricingObject.Type.String()),
	)
	return out, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*pricingobjectdomain.PricingObject, error) {
	entity, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, pricingobjectdomain.ErrNotFound
	}
	return entity, nil
}

func (s *Service) List(ctx context.Context, req pricingobjectdomain.ListRequest) (pricingobjectdomain.ListResponse, error) {
	if req.Type != nil && !req.Type.Valid() {
		return pricingobjectdomain.ListResponse{}, pricingobjectdomain.ErrInvalidType
	}

	filter := pricingobjectdomain.ListFilter{
		ServiceID: req.ServiceID,
		Type:      req.Type,
		Limit:     req.Size() + 1,
	}
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return pricingobjectdomain.ListResponse{}, pricingobjectdomain.ErrInvalidPageToken
		}
		afterID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return pricingobjectdomain.ListResponse{}, pricingobjectdomain.ErrInvalidPageToken
		}
		filter.AfterID = afterID
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return pricingobjectdomain.ListResponse{}, err
	}

	items, pageInfo, err := pagination.BuildCursorPageInfo(items, req.Size(), func(po pricingobjectdomain.PricingObject) pagination.Cursor {
		return pagination.Cursor{ID: po.ID.String()}
	})
	if err != nil {
		return pricingobjectdomain.ListResponse{}, err
	}

	return pricingobjectdomain.ListResponse{
		PageInfo:       pageInfo,
		PricingObjects: items,
	}, nil
}

func (s *Service) ListActiveBetween(ctx context.Context, req pricingobjectdomain.ActiveRequest) ([]pricingobjectdomain.PricingObject, error) {
	from, to := truncateDay(req.From), truncateDay(req.To)
	if from.IsZero() || to.IsZero() || from.After(to) {
		return nil, pricingobjectdomain.ErrInvalidDateRange
	}
	return s.repo.ListWithSnapshotsBetween(ctx, s.db, from, to, req.ServiceID)
}

func (s *Service) UpdateRemarks(ctx context.Context, id snowflake.ID, remarks string) (*pricingobjectdomain.PricingObject, error) {
	return s.update(ctx, id, map[string]any{"remarks": remarks})
}

func (s *Service) ChangeService(ctx context.Context, id, serviceID snowflake.ID) (*pricingobjectdomain.PricingObject, error) {
	if serviceID == 0 {
		return nil, pricingobjectdomain.ErrInvalidService
	}
	if err := s.ensureService(ctx, s.db, serviceID); err != nil {
		return nil, err
	}
	return s.update(ctx, id, map[string]any{"service_id": serviceID})
}

// Delete removes a pricing object and its extension. Objects referenced by
// daily snapshots stay: history must keep resolving.
func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if entity == nil {
			return pricingobjectdomain.ErrNotFound
		}

		count, err := s.repo.CountDailySnapshots(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return pricingobjectdomain.ErrHasSnapshots
		}

		if err := s.repo.DeleteAssetInfo(ctx, tx, id); err != nil {
			return err
		}
		if err := s.repo.DeleteVirtualInfo(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if db.IsForeignKeyErr(err) {
		return pricingobjectdomain.ErrHasSnapshots
	}
	if err != nil {
		return err
	}

	s.logger(ctx).Info("pricing object deleted", zap.String("pricing_object_id", id.String()))
	return nil
}

func (s *Service) AttachAsset(ctx context.Context, req pricingobjectdomain.AttachAssetRequest) (*pricingobjectdomain.AssetInfo, error) {
	var info *pricingobjectdomain.AssetInfo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		info, err = s.attachAsset(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Service) AttachVirtual(ctx context.Context, req pricingobjectdomain.AttachVirtualRequest) (*pricingobjectdomain.VirtualInfo, error) {
	var info *pricingobjectdomain.VirtualInfo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		info, err = s.attachVirtual(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Service) GetAsset(ctx context.Context, pricingObjectID snowflake.ID) (*pricingobjectdomain.AssetInfo, error) {
	return notFoundIfNil(s.repo.FindAssetInfo(ctx, s.db, pricingObjectID))
}

func (s *Service) GetVirtual(ctx context.Context, pricingObjectID snowflake.ID) (*pricingobjectdomain.VirtualInfo, error) {
	return notFoundIfNil(s.repo.FindVirtualInfo(ctx, s.db, pricingObjectID))
}

func (s *Service) FindAssetByAssetID(ctx context.Context, assetID int64) (*pricingobjectdomain.AssetInfo, error) {
	return notFoundIfNil(s.repo.FindAssetInfoByAssetID(ctx, s.db, assetID))
}

func (s *Service) FindAssetByDeviceID(ctx context.Context, deviceID int64) (*pricingobjectdomain.AssetInfo, error) {
	return notFoundIfNil(s.repo.FindAssetInfoByDeviceID(ctx, s.db, deviceID))
}

func (s *Service) FindVirtualByDeviceID(ctx context.Context, deviceID int64) (*pricingobjectdomain.VirtualInfo, error) {
	return notFoundIfNil(s.repo.FindVirtualInfoByDeviceID(ctx, s.db, deviceID))
}

func (s *Service) create(ctx context.Context, tx *gorm.DB, req pricingobjectdomain.CreateRequest) (*pricingobjectdomain.PricingObject, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > pricingobjectdomain.NameMaxLength {
		return nil, pricingobjectdomain.ErrInvalidName
	}
	if !req.Type.Valid() {
		return nil, pricingobjectdomain.ErrInvalidType
	}
	if req.ServiceID == 0 {
		return nil, pricingobjectdomain.ErrInvalidService
	}
	if err := s.ensureService(ctx, tx, req.ServiceID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	editor := editorcontext.EditorPtr(ctx)
	entity := &pricingobjectdomain.PricingObject{
		ID:         s.genID.Generate(),
		Name:       name,
		Type:       req.Type,
		Remarks:    req.Remarks,
		ServiceID:  req.ServiceID,
		CreatedAt:  now,
		CreatedBy:  editor,
		ModifiedAt: now,
		ModifiedBy: editor,
	}
	if err := s.repo.Insert(ctx, tx, entity); err != nil {
		if db.IsForeignKeyErr(err) {
			return nil, pricingobjectdomain.ErrServiceNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (s *Service) update(ctx context.Context, id snowflake.ID, fields map[string]any) (*pricingobjectdomain.PricingObject, error) {
	fields["modified_at"] = s.clock.Now()
	fields["modified_by"] = editorcontext.EditorPtr(ctx)

	var entity *pricingobjectdomain.PricingObject
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.repo.UpdateFields(ctx, tx, id, fields)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pricingobjectdomain.ErrNotFound
		}
		entity, err = s.repo.FindByID(ctx, tx, id)
		return err
	})
	if db.IsForeignKeyErr(err) {
		return nil, pricingobjectdomain.ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) attachAsset(ctx context.Context, tx *gorm.DB, req pricingobjectdomain.AttachAssetRequest) (*pricingobjectdomain.AssetInfo, error) {
	if req.AssetID <= 0 {
		return nil, pricingobjectdomain.ErrInvalidAssetID
	}
	if req.DeviceID != nil && *req.DeviceID <= 0 {
		return nil, pricingobjectdomain.ErrInvalidDeviceID
	}
	sn, err := normalizeIdentifier(req.SN)
	if err != nil {
		return nil, err
	}
	barcode, err := normalizeIdentifier(req.Barcode)
	if err != nil {
		return nil, err
	}

	if err := s.ensureExtensionSlot(ctx, tx, req.PricingObjectID, pricingobjectdomain.TypeAsset); err != nil {
		return nil, err
	}

	info := &pricingobjectdomain.AssetInfo{
		ID:              s.genID.Generate(),
		PricingObjectID: req.PricingObjectID,
		SN:              sn,
		Barcode:         barcode,
		DeviceID:        req.DeviceID,
		AssetID:         req.AssetID,
	}
	if err := s.repo.InsertAssetInfo(ctx, tx, info); err != nil {
		return nil, mapExtensionErr(err)
	}
	return info, nil
}

func (s *Service) attachVirtual(ctx context.Context, tx *gorm.DB, req pricingobjectdomain.AttachVirtualRequest) (*pricingobjectdomain.VirtualInfo, error) {
	if req.DeviceID <= 0 {
		return nil, pricingobjectdomain.ErrInvalidDeviceID
	}
	if err := s.ensureExtensionSlot(ctx, tx, req.PricingObjectID, pricingobjectdomain.TypeVirtual); err != nil {
		return nil, err
	}

	info := &pricingobjectdomain.VirtualInfo{
		ID:              s.genID.Generate(),
		PricingObjectID: req.PricingObjectID,
		DeviceID:        req.DeviceID,
	}
	if err := s.repo.InsertVirtualInfo(ctx, tx, info); err != nil {
		return nil, mapExtensionErr(err)
	}
	return info, nil
}

// ensureExtensionSlot checks the pricing object exists, has the wanted type and
// carries no extension yet. The unique index on pricing_object_id backs this up
// under concurrent attach.
func (s *Service) ensureExtensionSlot(ctx context.Context, tx *gorm.DB, pricingObjectID snowflake.ID, want pricingobjectdomain.Type) error {
	po, err := s.repo.FindByID(ctx, tx, pricingObjectID)
	if err != nil {
		return err
	}
	if po == nil {
		return pricingobjectdomain.ErrNotFound
	}
	if po.Type != want {
		s.logger(ctx).Warn("extension type mismatch",
			zap.String("pricing_object_id", po.ID.String()),
			zap.String("declared_type", po.Type.String()),
			zap.String("extension_type", want.String()),
		)
		return pricingobjectdomain.ErrTypeMismatch
	}

	var exists bool
	switch want {
	case pricingobjectdomain.TypeAsset:
		info, err := s.repo.FindAssetInfo(ctx, tx, pricingObjectID)
		if err != nil {
			return err
		}
		exists = info != nil
	case pricingobjectdomain.TypeVirtual:
		info, err := s.repo.FindVirtualInfo(ctx, tx, pricingObjectID)
		if err != nil {
			return err
		}
		exists = info != nil
	}
	if exists {
		return pricingobjectdomain.ErrExtensionExists
	}
	return nil
}

func (s *Service) ensureService(ctx context.Context, tx *gorm.DB, serviceID snowflake.ID) error {
	svc, err := s.serviceRepo.FindByID(ctx, tx, serviceID)
	if err != nil {
		return err
	}
	if svc == nil {
		return pricingobjectdomain.ErrServiceNotFound
	}
	return nil
}

func (s *Service) logger(ctx context.Context) *zap.Logger {
	return logger.WithContext(ctx, s.log)
}

func mapExtensionErr(err error) error {
	// ensureExtensionSlot already ruled out a second extension, so a unique
	// violation here is an sn/barcode/device_id/asset_id collision or a racing attach.
	if db.IsDuplicateKeyErr(err) {
		return pricingobjectdomain.ErrDuplicateIdentifier
	}
	return err
}

func normalizeIdentifier(value string) (*string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(value) > pricingobjectdomain.IdentifierMaxLength {
		return nil, pricingobjectdomain.ErrInvalidIdentifier
	}
	return &value, nil
}

func notFoundIfNil[T any](item *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, pricingobjectdomain.ErrNotFound
	}
	return item, nil
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
