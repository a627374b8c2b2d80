package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	pricingobjectdomain "github.com/smallbiznis/scrooge/internal/pricingobject/domain"
	"github.com/smallbiznis/scrooge/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricingobjectdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, po *pricingobjectdomain.PricingObject) error {
	return db.WithContext(ctx).Omit("Service").Create(po).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*pricingobjectdomain.PricingObject, error) {
	return repository.TakeOne[pricingobjectdomain.PricingObject](db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter pricingobjectdomain.ListFilter) ([]pricingobjectdomain.PricingObject, error) {
	stmt := db.WithContext(ctx).Model(&pricingobjectdomain.PricingObject{})
	if filter.ServiceID != nil {
		stmt = stmt.Where("service_id = ?", *filter.ServiceID)
	}
	if filter.Type != nil {
		stmt = stmt.Where("type = ?", *filter.Type)
	}
	if filter.AfterID != 0 {
		stmt = stmt.Where("id > ?", filter.AfterID)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	return repository.FindAll[pricingobjectdomain.PricingObject](stmt.Order("id ASC"))
}

func (r *repo) ListWithSnapshotsBetween(ctx context.Context, db *gorm.DB, from, to time.Time, serviceID *snowflake.ID) ([]pricingobjectdomain.PricingObject, error) {
	sub := db.Table("daily_pricing_objects AS d").
		Select("1").
		Where("d.pricing_object_id = pricing_objects.id AND d.date >= ? AND d.date <= ?", from, to)
	if serviceID != nil {
		// the service valid on those days, not the current one
		sub = sub.Where("d.service_id = ?", *serviceID)
	}

	return repository.FindAll[pricingobjectdomain.PricingObject](db.WithContext(ctx).
		Model(&pricingobjectdomain.PricingObject{}).
		Where("EXISTS (?)", sub).
		Order("id ASC"))
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) (int64, error) {
	res := db.WithContext(ctx).
		Model(&pricingobjectdomain.PricingObject{}).
		Where("id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&pricingobjectdomain.PricingObject{}).Error
}

func (r *repo) CountDailySnapshots(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("daily_pricing_objects").
		Where("pricing_object_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *repo) InsertAssetInfo(ctx context.Context, db *gorm.DB, info *pricingobjectdomain.AssetInfo) error {
	return db.WithContext(ctx).Omit("PricingObject").Create(info).Error
}

func (r *repo) FindAssetInfo(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID) (*pricingobjectdomain.AssetInfo, error) {
	return repository.TakeOne[pricingobjectdomain.AssetInfo](db.WithContext(ctx).Where("pricing_object_id = ?", pricingObjectID))
}

func (r *repo) FindAssetInfoByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*pricingobjectdomain.AssetInfo, error) {
	return repository.TakeOne[pricingobjectdomain.AssetInfo](db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindAssetInfoByAssetID(ctx context.Context, db *gorm.DB, assetID int64) (*pricingobjectdomain.AssetInfo, error) {
	return repository.TakeOne[pricingobjectdomain.AssetInfo](db.WithContext(ctx).Where("asset_id = ?", assetID))
}

func (r *repo) FindAssetInfoByDeviceID(ctx context.Context, db *gorm.DB, deviceID int64) (*pricingobjectdomain.AssetInfo, error) {
	return repository.TakeOne[pricingobjectdomain.AssetInfo](db.WithContext(ctx).Where("device_id = ?", deviceID))
}

func (r *repo) DeleteAssetInfo(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("pricing_object_id = ?", pricingObjectID).
		Delete(&pricingobjectdomain.AssetInfo{}).Error
}

func (r *repo) InsertVirtualInfo(ctx context.Context, db *gorm.DB, info *pricingobjectdomain.VirtualInfo) error {
	return db.WithContext(ctx).Omit("PricingObject").Create(info).Error
}

func (r *repo) FindVirtualInfo(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID) (*pricingobjectdomain.VirtualInfo, error) {
	return repository.TakeOne[pricingobjectdomain.VirtualInfo](db.WithContext(ctx).Where("pricing_object_id = ?", pricingObjectID))
}

func (r *repo) FindVirtualInfoByDeviceID(ctx context.Context, db *gorm.DB, deviceID int64) (*pricingobjectdomain.VirtualInfo, error) {
	return repository.TakeOne[pricingobjectdomain.VirtualInfo](db.WithContext(ctx).Where("device_id = ?", deviceID))
}

func (r *repo) DeleteVirtualInfo(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("pricing_object_id = ?", pricingObjectID).
		Delete(&pricingobjectdomain.VirtualInfo{}).Error
}
