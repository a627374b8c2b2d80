package domain

import (
	"database/sql/driver"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	AmountPrecision = 16
	AmountScale     = 6
)

var (
	ErrNegativeAmount   = errors.New("negative_amount")
	ErrAmountOutOfRange = errors.New("amount_out_of_range")
	maxAmountExclusive  = decimal.New(1, AmountPrecision-AmountScale)
)

// Amount is a non-negative fixed-point value stored as numeric(16,6).
type Amount struct {
	decimal.Decimal
}

// NewAmount truncates d to six fractional digits and checks it fits the column.
func NewAmount(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	d = d.Truncate(AmountScale)
	if d.GreaterThanOrEqual(maxAmountExclusive) {
		return Amount{}, ErrAmountOutOfRange
	}
	return Amount{Decimal: d}, nil
}

// MustAmount parses s and panics on invalid input. Intended for constants and tests.
func MustAmount(s string) Amount {
	a, err := NewAmount(decimal.RequireFromString(s))
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Value() (driver.Value, error) {
	return a.StringFixed(AmountScale), nil
}

func (Amount) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "sqlite":
		// sqlite would coerce numeric text to REAL
		return "text"
	case "mysql":
		return "decimal(16,6)"
	default:
		return "numeric(16,6)"
	}
}
