package model

import "github.com/shopspring/decimal"

// Money is a monetary amount in a specific currency.
type Money struct {
	Amount   decimal.Decimal
	Currency string // ISO 4217 code, e.g. "USD"
}

// Abs returns the magnitude of the amount regardless of sign.
func (m Money) Abs() decimal.Decimal {
	return m.Amount.Abs()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}
