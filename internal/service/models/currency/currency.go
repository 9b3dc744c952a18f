// Package currency holds the ISO currency codes books are priced in.
package currency

import (
	"database/sql/driver"
	"errors"
)

// Currency is an ISO 4217 code. Amounts are always carried separately as
// integer minor units (cents).
type Currency string

const (
	CurrencyRUB Currency = "RUB"
)

// Default is the currency books are priced in when none is given.
const Default = CurrencyRUB

// ErrInvalidCurrency is returned for codes the store does not price in.
var ErrInvalidCurrency = errors.New("invalid currency")

func (c Currency) String() string {
	return string(c)
}

// Value stores the currency as its code.
func (c Currency) Value() (driver.Value, error) {
	return c.String(), nil
}

// ParseCurrency accepts a known code; the empty string means Default.
func ParseCurrency(s string) (Currency, error) {
	switch s {
	case CurrencyRUB.String():
		return CurrencyRUB, nil
	case "":
		return Default, nil
	default:
		return "", ErrInvalidCurrency
	}
}
