package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	dailycostdomain "github.com/smallbiznis/scrooge/internal/dailycost/domain"
	"github.com/smallbiznis/scrooge/pkg/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() dailycostdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, d *dailycostdomain.DailyPricingObject) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(d).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*dailycostdomain.DailyPricingObject, error) {
	return repository.TakeOne[dailycostdomain.DailyPricingObject](db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindByPricingObjectAndDate(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID, date time.Time) (*dailycostdomain.DailyPricingObject, error) {
	return repository.TakeOne[dailycostdomain.DailyPricingObject](db.WithContext(ctx).
		Where("pricing_object_id = ? AND date = ?", pricingObjectID, datatypes.Date(date)))
}

func (r *repo) ListByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]dailycostdomain.DailyPricingObject, error) {
	return repository.FindAll[dailycostdomain.DailyPricingObject](db.WithContext(ctx).
		Where("date = ?", datatypes.Date(date)).
		Order("pricing_object_id ASC"))
}

func (r *repo) ListByPricingObject(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID, from, to time.Time) ([]dailycostdomain.DailyPricingObject, error) {
	return repository.FindAll[dailycostdomain.DailyPricingObject](db.WithContext(ctx).
		Where("pricing_object_id = ?", pricingObjectID).
		Scopes(between("date", from, to)).
		Order("date ASC"))
}

func (r *repo) ListByService(ctx context.Context, db *gorm.DB, serviceID snowflake.ID, from, to time.Time) ([]dailycostdomain.DailyPricingObject, error) {
	return repository.FindAll[dailycostdomain.DailyPricingObject](db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Scopes(between("date", from, to)).
		Order("date ASC, pricing_object_id ASC"))
}

func (r *repo) InsertAssetInfo(ctx context.Context, db *gorm.DB, info *dailycostdomain.DailyAssetInfo) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(info).Error
}

func (r *repo) FindAssetInfo(ctx context.Context, db *gorm.DB, dailyPricingObjectID snowflake.ID) (*dailycostdomain.DailyAssetInfo, error) {
	return repository.TakeOne[dailycostdomain.DailyAssetInfo](db.WithContext(ctx).
		Where("daily_pricing_object_id = ?", dailyPricingObjectID))
}

func (r *repo) FindAssetInfoByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*dailycostdomain.DailyAssetInfo, error) {
	return repository.TakeOne[dailycostdomain.DailyAssetInfo](db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) ListAssetCostsByService(ctx context.Context, db *gorm.DB, serviceID snowflake.ID, from, to time.Time) ([]dailycostdomain.Amount, error) {
	costs := make([]dailycostdomain.Amount, 0)
	err := db.WithContext(ctx).
		Model(&dailycostdomain.DailyAssetInfo{}).
		Joins("JOIN daily_pricing_objects ON daily_pricing_objects.id = daily_asset_infos.daily_pricing_object_id").
		Where("daily_pricing_objects.service_id = ?", serviceID).
		Scopes(between("daily_pricing_objects.date", from, to)).
		Pluck("daily_asset_infos.daily_cost", &costs).Error
	if err != nil {
		return nil, err
	}
	return costs, nil
}

func (r *repo) InsertVirtualInfo(ctx context.Context, db *gorm.DB, info *dailycostdomain.DailyVirtualInfo) error {
	return db.WithContext(ctx).Omit(clause.Associations).Create(info).Error
}

func (r *repo) FindVirtualInfo(ctx context.Context, db *gorm.DB, dailyPricingObjectID snowflake.ID) (*dailycostdomain.DailyVirtualInfo, error) {
	return repository.TakeOne[dailycostdomain.DailyVirtualInfo](db.WithContext(ctx).
		Where("daily_pricing_object_id = ?", dailyPricingObjectID))
}

func (r *repo) ListVirtualsByHypervisor(ctx context.Context, db *gorm.DB, hypervisorID snowflake.ID) ([]dailycostdomain.DailyVirtualInfo, error) {
	return repository.FindAll[dailycostdomain.DailyVirtualInfo](db.WithContext(ctx).
		Where("hypervisor_id = ?", hypervisorID).
		Order("id ASC"))
}

func between(column string, from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" >= ? AND "+column+" <= ?", datatypes.Date(from), datatypes.Date(to))
	}
}
