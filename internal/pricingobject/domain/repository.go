package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	ServiceID *snowflake.ID
	Type      *Type
	AfterID   snowflake.ID
	Limit     int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, po *PricingObject) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PricingObject, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]PricingObject, error)
	ListWithSnapshotsBetween(ctx context.Context, db *gorm.DB, from, to time.Time, serviceID *snowflake.ID) ([]PricingObject, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountDailySnapshots(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)

	InsertAssetInfo(ctx context.Context, db *gorm.DB, info *AssetInfo) error
	FindAssetInfo(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID) (*AssetInfo, error)
	FindAssetInfoByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*AssetInfo, error)
	FindAssetInfoByAssetID(ctx context.Context, db *gorm.DB, assetID int64) (*AssetInfo, error)
	FindAssetInfoByDeviceID(ctx context.Context, db *gorm.DB, deviceID int64) (*AssetInfo, error)
	DeleteAssetInfo(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID) error

	InsertVirtualInfo(ctx context.Context, db *gorm.DB, info *VirtualInfo) error
	FindVirtualInfo(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID) (*VirtualInfo, error)
	FindVirtualInfoByDeviceID(ctx context.Context, db *gorm.DB, deviceID int64) (*VirtualInfo, error)
	DeleteVirtualInfo(ctx context.Context, db *gorm.DB, pricingObjectID snowflake.ID) error
}
