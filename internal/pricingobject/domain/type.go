package domain

import (
	"strconv"
	"strings"
)

// Type classifies a pricing object. Codes are persisted; do not renumber.
type Type uint8

const (
	TypeAsset Type = iota + 1
	TypeVirtual
	TypeTenant
	TypeIPAddress
)

// Types lists every known type in code order.
var Types = []Type{TypeAsset, TypeVirtual, TypeTenant, TypeIPAddress}

var typeCodes = map[Type]string{
	TypeAsset:     "asset",
	TypeVirtual:   "virtual",
	TypeTenant:    "tenant",
	TypeIPAddress: "ip_address",
}

func (t Type) Valid() bool {
	_, ok := typeCodes[t]
	return ok
}

// String returns the machine code, e.g. "ip_address". Display labels live in package labels.
func (t Type) String() string {
	if code, ok := typeCodes[t]; ok {
		return code
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// HasExtension reports whether the type carries a type-specific info row.
func (t Type) HasExtension() bool {
	return t == TypeAsset || t == TypeVirtual
}

// ParseType accepts either a code ("virtual") or its integer value ("2").
func ParseType(value string) (Type, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for t, code := range typeCodes {
		if code == value {
			return t, nil
		}
	}
	if n, err := strconv.Atoi(value); err == nil {
		if t := Type(n); n > 0 && n < 256 && t.Valid() {
			return t, nil
		}
	}
	return 0, ErrInvalidType
}

func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, ErrInvalidType
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
