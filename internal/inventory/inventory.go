// Package inventory reads the asset valuation and VM placement feed.
package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/scrooge/internal/costing"
	pricingobjectdomain "github.com/smallbiznis/scrooge/internal/pricingobject/domain"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownAsset   = errors.New("unknown_asset")
	ErrUnknownVirtual = errors.New("unknown_virtual")
)

type feed struct {
	Assets   []assetRecord   `yaml:"assets"`
	Virtuals []virtualRecord `yaml:"virtuals"`
}

type assetRecord struct {
	AssetID           int64  `yaml:"asset_id"`
	Price             string `yaml:"price"`
	DepreciationRate  string `yaml:"depreciation_rate"`
	InvoiceDate       string `yaml:"invoice_date"`
	ForceDepreciation bool   `yaml:"force_depreciation"`
}

type virtualRecord struct {
	DeviceID           int64 `yaml:"device_id"`
	HypervisorDeviceID int64 `yaml:"hypervisor_device_id"`
}

// Inventory is an immutable snapshot of the feed.
type Inventory struct {
	valuations  map[int64]costing.Valuation
	hypervisors map[int64]int64
}

// Empty returns an inventory that knows no assets.
func Empty() *Inventory {
	return &Inventory{
		valuations:  map[int64]costing.Valuation{},
		hypervisors: map[int64]int64{},
	}
}

func Load(path string) (*Inventory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory feed: %w", err)
	}
	return Parse(bytes.NewReader(raw))
}

func Parse(r io.Reader) (*Inventory, error) {
	var f feed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode inventory feed: %w", err)
	}

	inv := Empty()
	for i, rec := range f.Assets {
		v, err := rec.valuation()
		if err != nil {
			return nil, fmt.Errorf("assets[%d]: %w", i, err)
		}
		if _, dup := inv.valuations[v.AssetID]; dup {
			return nil, fmt.Errorf("assets[%d]: duplicate asset_id %d", i, v.AssetID)
		}
		inv.valuations[v.AssetID] = v
	}
	for i, rec := range f.Virtuals {
		if rec.DeviceID <= 0 || rec.HypervisorDeviceID <= 0 {
			return nil, fmt.Errorf("virtuals[%d]: device ids must be positive", i)
		}
		inv.hypervisors[rec.DeviceID] = rec.HypervisorDeviceID
	}
	return inv, nil
}

func (rec assetRecord) valuation() (costing.Valuation, error) {
	if rec.AssetID <= 0 {
		return costing.Valuation{}, fmt.Errorf("asset_id must be positive")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(rec.Price))
	if err != nil {
		return costing.Valuation{}, fmt.Errorf("price: %w", err)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(rec.DepreciationRate))
	if err != nil {
		return costing.Valuation{}, fmt.Errorf("depreciation_rate: %w", err)
	}
	invoiceDate, err := time.Parse(time.DateOnly, strings.TrimSpace(rec.InvoiceDate))
	if err != nil {
		return costing.Valuation{}, fmt.Errorf("invoice_date: %w", err)
	}
	return costing.Valuation{
		AssetID:           rec.AssetID,
		Price:             price,
		DepreciationRate:  rate,
		InvoiceDate:       invoiceDate,
		ForceDepreciation: rec.ForceDepreciation,
	}, nil
}

func (inv *Inventory) Valuation(assetID int64) (costing.Valuation, bool) {
	v, ok := inv.valuations[assetID]
	return v, ok
}

// AssetCost prices an asset for date from its valuation.
func (inv *Inventory) AssetCost(_ context.Context, asset pricingobjectdomain.AssetInfo, date time.Time) (costing.DailyCost, error) {
	v, ok := inv.valuations[asset.AssetID]
	if !ok {
		return costing.DailyCost{}, fmt.Errorf("%w: asset_id %d", ErrUnknownAsset, asset.AssetID)
	}
	return costing.Daily(v, date)
}

// HypervisorDeviceID returns the device id of the host running the VM.
func (inv *Inventory) HypervisorDeviceID(_ context.Context, virtual pricingobjectdomain.VirtualInfo, _ time.Time) (int64, error) {
	host, ok := inv.hypervisors[virtual.DeviceID]
	if !ok {
		return 0, fmt.Errorf("%w: device_id %d", ErrUnknownVirtual, virtual.DeviceID)
	}
	return host, nil
}
