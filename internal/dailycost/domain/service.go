package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Record(ctx context.Context, req RecordRequest) (*DailyPricingObject, error)
	Get(ctx context.Context, id snowflake.ID) (*DailyPricingObject, error)
	ListByDate(ctx context.Context, date time.Time) ([]DailyPricingObject, error)
	ListByPricingObject(ctx context.Context, pricingObjectID snowflake.ID, from, to time.Time) ([]DailyPricingObject, error)
	ListByService(ctx context.Context, serviceID snowflake.ID, from, to time.Time) ([]DailyPricingObject, error)

	RecordAsset(ctx context.Context, req RecordAssetRequest) (*DailyAssetInfo, error)
	GetAsset(ctx context.Context, dailyPricingObjectID snowflake.ID) (*DailyAssetInfo, error)
	SumDailyCost(ctx context.Context, serviceID snowflake.ID, from, to time.Time) (decimal.Decimal, error)

	RecordVirtual(ctx context.Context, req RecordVirtualRequest) (*DailyVirtualInfo, error)
	GetVirtual(ctx context.Context, dailyPricingObjectID snowflake.ID) (*DailyVirtualInfo, error)
	ListVirtualsOnHypervisor(ctx context.Context, hypervisorID snowflake.ID) ([]DailyVirtualInfo, error)
}

// RecordRequest snapshots a pricing object for Date. A nil ServiceID uses the
// pricing object's current service.
type RecordRequest struct {
	Date            time.Time     `json:"date"`
	PricingObjectID snowflake.ID  `json:"pricing_object_id"`
	ServiceID       *snowflake.ID `json:"service_id,omitempty"`
}

type RecordAssetRequest struct {
	DailyPricingObjectID snowflake.ID    `json:"daily_pricing_object_id"`
	DepreciationRate     decimal.Decimal `json:"depreciation_rate"`
	IsDepreciated        bool            `json:"is_depreciated"`
	DailyCost            decimal.Decimal `json:"daily_cost"`
}

type RecordVirtualRequest struct {
	DailyPricingObjectID snowflake.ID `json:"daily_pricing_object_id"`
	HypervisorID         snowflake.ID `json:"hypervisor_id"`
}

var (
	ErrInvalidDate            = errors.New("invalid_date")
	ErrInvalidDateRange       = errors.New("invalid_date_range")
	ErrPricingObjectNotFound  = errors.New("pricing_object_not_found")
	ErrServiceNotFound        = errors.New("service_not_found")
	ErrAlreadyRecorded        = errors.New("already_recorded")
	ErrTypeMismatch           = errors.New("type_mismatch")
	ErrAssetInfoMissing       = errors.New("asset_info_missing")
	ErrExtensionExists        = errors.New("extension_exists")
	ErrHypervisorNotFound     = errors.New("hypervisor_not_found")
	ErrHypervisorDateMismatch = errors.New("hypervisor_date_mismatch")
	ErrNotFound               = errors.New("not_found")
)
