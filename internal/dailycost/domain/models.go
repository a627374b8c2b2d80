package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	pricingobjectdomain "github.com/smallbiznis/scrooge/internal/pricingobject/domain"
	servicedomain "github.com/smallbiznis/scrooge/internal/serviceregistry/domain"
	"gorm.io/datatypes"
)

// DailyPricingObject records that a pricing object existed on a date and
// which service it was billed to that day. Rows are write-once.
type DailyPricingObject struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Date            datatypes.Date `json:"date" gorm:"not null;index;uniqueIndex:ux_daily_pricing_objects_po_date,priority:2"`
	PricingObjectID snowflake.ID   `json:"pricing_object_id" gorm:"not null;uniqueIndex:ux_daily_pricing_objects_po_date,priority:1"`
	ServiceID       snowflake.ID   `json:"service_id" gorm:"not null;index"`
	CreatedAt       time.Time      `json:"created_at" gorm:"not null"`

	PricingObject *pricingobjectdomain.PricingObject `json:"-" gorm:"foreignKey:PricingObjectID;references:ID;constraint:OnDelete:RESTRICT"`
	Service       *servicedomain.Service             `json:"-" gorm:"foreignKey:ServiceID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (DailyPricingObject) TableName() string { return "daily_pricing_objects" }

// Day returns the UTC calendar day of the snapshot.
func (d DailyPricingObject) Day() time.Time {
	return Day(time.Time(d.Date))
}

// DailyAssetInfo holds the cost figures of an asset for one day.
type DailyAssetInfo struct {
	ID                   snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	DailyPricingObjectID snowflake.ID `json:"daily_pricing_object_id" gorm:"not null;uniqueIndex:ux_daily_asset_infos_daily_pricing_object"`
	AssetInfoID          snowflake.ID `json:"asset_info_id" gorm:"not null;index"`
	DepreciationRate     Amount       `json:"depreciation_rate" gorm:"not null"`
	IsDepreciated        bool         `json:"is_depreciated" gorm:"not null;default:false"`
	DailyCost            Amount       `json:"daily_cost" gorm:"not null"`

	DailyPricingObject *DailyPricingObject            `json:"-" gorm:"foreignKey:DailyPricingObjectID;references:ID;constraint:OnDelete:CASCADE"`
	AssetInfo          *pricingobjectdomain.AssetInfo `json:"-" gorm:"foreignKey:AssetInfoID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (DailyAssetInfo) TableName() string { return "daily_asset_infos" }

// DailyVirtualInfo links a virtual machine's day to its hypervisor's day.
type DailyVirtualInfo struct {
	ID                   snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	DailyPricingObjectID snowflake.ID `json:"daily_pricing_object_id" gorm:"not null;uniqueIndex:ux_daily_virtual_infos_daily_pricing_object"`
	HypervisorID         snowflake.ID `json:"hypervisor_id" gorm:"not null;index"`

	DailyPricingObject *DailyPricingObject `json:"-" gorm:"foreignKey:DailyPricingObjectID;references:ID;constraint:OnDelete:CASCADE"`
	Hypervisor         *DailyAssetInfo     `json:"-" gorm:"foreignKey:HypervisorID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (DailyVirtualInfo) TableName() string { return "daily_virtual_infos" }

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
