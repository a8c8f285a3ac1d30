package domain

import "github.com/shopspring/decimal"

// Money is a decimal amount that encodes as a JSON number.
type Money struct {
	decimal.Decimal
}

// PriceFromCents converts minor units to a decimal amount.
func PriceFromCents(cents int64) Money {
	return Money{decimal.New(cents, -2)}
}

// MarshalJSON writes the amount unquoted.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both quoted and bare numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}
