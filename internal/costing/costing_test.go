package costing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valuation(price, rate string) Valuation {
	return Valuation{
		AssetID:          1001,
		Price:            decimal.RequireFromString(price),
		DepreciationRate: decimal.RequireFromString(rate),
		InvoiceDate:      time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestDailyStraightLine(t *testing.T) {
	got, err := Daily(valuation("36500", "25"), time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "25.000000", got.DailyCost.StringFixed(6))
	assert.Equal(t, "25", got.DepreciationRate.String())
	assert.False(t, got.IsDepreciated)
}

func TestDailyTruncatesToSixPlaces(t *testing.T) {
	got, err := Daily(valuation("1000", "30"), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// 1000 * 30 / 36500 = 0.82191780...
	assert.Equal(t, "0.821917", got.DailyCost.StringFixed(6))
}

func TestDailyAfterDepreciationEnd(t *testing.T) {
	v := valuation("36500", "25")
	end, err := v.DepreciationEnd()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), end)

	before, err := Daily(v, end.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.False(t, before.IsDepreciated)

	after, err := Daily(v, end)
	require.NoError(t, err)
	assert.True(t, after.IsDepreciated)
	assert.True(t, after.DailyCost.IsZero())
}

func TestDailyForced(t *testing.T) {
	v := valuation("36500", "25")
	v.ForceDepreciation = true

	got, err := Daily(v, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, got.IsDepreciated)
	assert.True(t, got.DailyCost.IsZero())
}

func TestDailyErrors(t *testing.T) {
	_, err := Daily(valuation("-1", "25"), time.Now())
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = Daily(valuation("100", "0"), time.Now())
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = Daily(valuation("100", "25"), time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNotYetAcquired)

	v := valuation("100", "25")
	v.InvoiceDate = time.Time{}
	_, err = Daily(v, time.Now())
	assert.ErrorIs(t, err, ErrMissingInvoice)
}
