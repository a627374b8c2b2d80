package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, d *DailyPricingObject) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DailyPricingObject, error)
	FindByPricingObjectAndDate(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID, date time.Time) (*DailyPricingObject, error)
	ListByDate(ctx context.Context, db *gorm.DB, date time.Time) ([]DailyPricingObject, error)
	ListByPricingObject(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID, from, to time.Time) ([]DailyPricingObject, error)
	ListByService(ctx context.Context, db *gorm.DB, serviceID snowflake.ID, from, to time.Time) ([]DailyPricingObject, error)

	InsertAssetInfo(ctx context.Context, db *gorm.DB, info *DailyAssetInfo) error
	FindAssetInfo(ctx context.Context, db *gorm.DB, dailyPricingObjectID snowflake.ID) (*DailyAssetInfo, error)
	FindAssetInfoByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DailyAssetInfo, error)
	ListAssetCostsByService(ctx context.Context, db *gorm.DB, serviceID snowflake.ID, from, to time.Time) ([]Amount, error)

	InsertVirtualInfo(ctx context.Context, db *gorm.DB, info *DailyVirtualInfo) error
	FindVirtualInfo(ctx context.Context, db *gorm.DB, dailyPricingObjectID snowflake.ID) (*DailyVirtualInfo, error)
	ListVirtualsByHypervisor(ctx context.Context, db *gorm.DB, hypervisorID snowflake.ID) ([]DailyVirtualInfo, error)
}
