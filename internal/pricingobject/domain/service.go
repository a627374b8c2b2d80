package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/scrooge/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*PricingObject, error)
	Register(ctx context.Context, req RegisterRequest) (*Registered, error)
	Get(ctx context.Context, id snowflake.ID) (*PricingObject, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	ListActiveBetween(ctx context.Context, req ActiveRequest) ([]PricingObject, error)
	UpdateRemarks(ctx context.Context, id snowflake.ID, remarks string) (*PricingObject, error)
	ChangeService(ctx context.Context, id, serviceID snowflake.ID) (*PricingObject, error)
	Delete(ctx context.Context, id snowflake.ID) error

	AttachAsset(ctx context.Context, req AttachAssetRequest) (*AssetInfo, error)
	AttachVirtual(ctx context.Context, req AttachVirtualRequest) (*VirtualInfo, error)
	GetAsset(ctx context.Context, pricingObjectID snowflake.ID) (*AssetInfo, error)
	GetVirtual(ctx context.Context, pricingObjectID snowflake.ID) (*VirtualInfo, error)
	FindAssetByAssetID(ctx context.Context, assetID int64) (*AssetInfo, error)
	FindAssetByDeviceID(ctx context.Context, deviceID int64) (*AssetInfo, error)
	FindVirtualByDeviceID(ctx context.Context, deviceID int64) (*VirtualInfo, error)
}

type CreateRequest struct {
	Name      string       `json:"name"`
	Type      Type         `json:"type"`
	ServiceID snowflake.ID `json:"service_id"`
	Remarks   string       `json:"remarks"`
}

type AssetFields struct {
	SN       string `json:"sn"`
	Barcode  string `json:"barcode"`
	DeviceID *int64 `json:"device_id"`
	AssetID  int64  `json:"asset_id"`
}

type AttachAssetRequest struct {
	PricingObjectID snowflake.ID `json:"pricing_object_id"`
	AssetFields
}

type AttachVirtualRequest struct {
	PricingObjectID snowflake.ID `json:"pricing_object_id"`
	DeviceID        int64        `json:"device_id"`
}

// RegisterRequest creates a pricing object together with its type extension.
// Asset must be set for TypeAsset and VirtualDeviceID for TypeVirtual.
type RegisterRequest struct {
	CreateRequest
	Asset           *AssetFields `json:"asset,omitempty"`
	VirtualDeviceID *int64       `json:"virtual_device_id,omitempty"`
}

type Registered struct {
	PricingObject PricingObject `json:"pricing_object"`
	Asset         *AssetInfo    `json:"asset,omitempty"`
	Virtual       *VirtualInfo  `json:"virtual,omitempty"`
}

type ListRequest struct {
	pagination.Pagination
	ServiceID *snowflake.ID
	Type      *Type
}

type ListResponse struct {
	pagination.PageInfo
	PricingObjects []PricingObject `json:"pricing_objects"`
}

type ActiveRequest struct {
	From      time.Time
	To        time.Time
	ServiceID *snowflake.ID
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidType         = errors.New("invalid_type")
	ErrInvalidService      = errors.New("invalid_service")
	ErrServiceNotFound     = errors.New("service_not_found")
	ErrInvalidAssetID      = errors.New("invalid_asset_id")
	ErrInvalidDeviceID     = errors.New("invalid_device_id")
	ErrInvalidIdentifier   = errors.New("invalid_identifier")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
	ErrInvalidDateRange    = errors.New("invalid_date_range")
	ErrMissingExtension    = errors.New("missing_extension")
	ErrTypeMismatch        = errors.New("type_mismatch")
	ErrExtensionExists     = errors.New("extension_exists")
	ErrDuplicateIdentifier = errors.New("duplicate_identifier")
	ErrHasSnapshots        = errors.New("has_daily_snapshots")
	ErrNotFound            = errors.New("not_found")
)
