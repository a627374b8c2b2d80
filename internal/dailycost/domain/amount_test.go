package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{in: "12.345678", want: "12.345678"},
		{in: "0.0025", want: "0.002500"},
		{in: "1.99999999", want: "1.999999"},
		{in: "0", want: "0.000000"},
		{in: "9999999999.999999", want: "9999999999.999999"},
		{in: "10000000000", err: ErrAmountOutOfRange},
		{in: "-0.000001", err: ErrNegativeAmount},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := NewAmount(decimal.RequireFromString(tc.in))
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.StringFixed(AmountScale))
		})
	}
}

func TestAmountValueIsFixedScale(t *testing.T) {
	v, err := MustAmount("3.5").Value()
	require.NoError(t, err)
	assert.Equal(t, "3.500000", v)

	var scanned Amount
	require.NoError(t, scanned.Scan("3.500000"))
	assert.True(t, scanned.Equal(decimal.RequireFromString("3.5")))
}

func TestDay(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	in := time.Date(2024, 1, 2, 3, 0, 0, 0, jakarta)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Day(in))
	assert.True(t, Day(time.Time{}).IsZero())
}
