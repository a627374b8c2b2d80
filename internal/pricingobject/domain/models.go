package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	servicedomain "github.com/smallbiznis/scrooge/internal/serviceregistry/domain"
)

const (
	NameMaxLength       = 75
	IdentifierMaxLength = 200
)

// PricingObject is a billable thing tracked over time.
type PricingObject struct {
	ID         snowflake.ID  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name       string        `json:"name" gorm:"type:varchar(75);not null;index"`
	Type       Type          `json:"type" gorm:"type:smallint;not null;index;check:chk_pricing_objects_type,type BETWEEN 1 AND 4"`
	Remarks    string        `json:"remarks" gorm:"type:text;not null;default:''"`
	ServiceID  snowflake.ID  `json:"service_id" gorm:"not null;index"`
	CreatedAt  time.Time     `json:"created_at" gorm:"not null"`
	CreatedBy  *snowflake.ID `json:"created_by,omitempty"`
	ModifiedAt time.Time     `json:"modified_at" gorm:"not null"`
	ModifiedBy *snowflake.ID `json:"modified_by,omitempty"`

	Service *servicedomain.Service `json:"-" gorm:"foreignKey:ServiceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (PricingObject) TableName() string { return "pricing_objects" }

// AssetInfo extends a PricingObject of TypeAsset.
type AssetInfo struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	PricingObjectID snowflake.ID `json:"pricing_object_id" gorm:"not null;uniqueIndex:ux_asset_infos_pricing_object"`
	SN              *string      `json:"sn,omitempty" gorm:"column:sn;type:varchar(200);uniqueIndex:ux_asset_infos_sn"`
	Barcode         *string      `json:"barcode,omitempty" gorm:"type:varchar(200);uniqueIndex:ux_asset_infos_barcode"`
	DeviceID        *int64       `json:"device_id,omitempty" gorm:"uniqueIndex:ux_asset_infos_device"`
	AssetID         int64        `json:"asset_id" gorm:"not null;uniqueIndex:ux_asset_infos_asset"`

	PricingObject *PricingObject `json:"-" gorm:"foreignKey:PricingObjectID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (AssetInfo) TableName() string { return "asset_infos" }

// VirtualInfo extends a PricingObject of TypeVirtual.
type VirtualInfo struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	PricingObjectID snowflake.ID `json:"pricing_object_id" gorm:"not null;uniqueIndex:ux_virtual_infos_pricing_object"`
	DeviceID        int64        `json:"device_id" gorm:"not null;uniqueIndex:ux_virtual_infos_device"`

	PricingObject *PricingObject `json:"-" gorm:"foreignKey:PricingObjectID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (VirtualInfo) TableName() string { return "virtual_infos" }
