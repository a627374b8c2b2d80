// Package costing computes straight-line depreciation figures for one day.
package costing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const daysPerYear = 365

var (
	ErrInvalidRate    = errors.New("invalid_depreciation_rate")
	ErrNegativePrice  = errors.New("negative_price")
	ErrMissingInvoice = errors.New("missing_invoice_date")
	ErrNotYetAcquired = errors.New("not_yet_acquired")
	hundred           = decimal.NewFromInt(100)
	monthsPerFullLife = decimal.NewFromInt(1200)
	dailyRateDivisor  = decimal.NewFromInt(100 * daysPerYear)
)

// Valuation is what finance knows about an asset. DepreciationRate is a
// yearly percentage of Price.
type Valuation struct {
	AssetID           int64
	Price             decimal.Decimal
	DepreciationRate  decimal.Decimal
	InvoiceDate       time.Time
	ForceDepreciation bool
}

// DailyCost is the cost of one asset on one day.
type DailyCost struct {
	DepreciationRate decimal.Decimal
	IsDepreciated    bool
	DailyCost        decimal.Decimal
}

// DepreciationEnd is the first day the asset carries no cost. The schedule
// runs floor(1200/rate) whole months from the invoice date.
func (v Valuation) DepreciationEnd() (time.Time, error) {
	if !v.DepreciationRate.IsPositive() || v.DepreciationRate.GreaterThan(hundred) {
		return time.Time{}, ErrInvalidRate
	}
	if v.InvoiceDate.IsZero() {
		return time.Time{}, ErrMissingInvoice
	}
	months := monthsPerFullLife.Div(v.DepreciationRate).IntPart()
	return day(v.InvoiceDate).AddDate(0, int(months), 0), nil
}

// Daily returns the figures for date: price * rate / 100 / 365 truncated to
// six places, or zero once the asset is fully depreciated.
func Daily(v Valuation, date time.Time) (DailyCost, error) {
	if v.Price.IsNegative() {
		return DailyCost{}, ErrNegativePrice
	}
	end, err := v.DepreciationEnd()
	if err != nil {
		return DailyCost{}, err
	}
	date = day(date)
	if date.Before(day(v.InvoiceDate)) {
		return DailyCost{}, ErrNotYetAcquired
	}

	out := DailyCost{DepreciationRate: v.DepreciationRate.Truncate(6)}
	if v.ForceDepreciation || !date.Before(end) {
		out.IsDepreciated = true
		out.DailyCost = decimal.Zero
		return out, nil
	}
	out.DailyCost = v.Price.Mul(v.DepreciationRate).Div(dailyRateDivisor).Truncate(6)
	return out, nil
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
