// Package currency normalizes monetary amounts into a reporting currency.
package currency

import (
	"github.com/shopspring/decimal"

	"github.com/matchbook-dev/matchbook/internal/model"
)

// Table provides exchange-rate lookup against a single reporting currency.
type Table struct {
	reporting string
	rates     map[string]decimal.Decimal
}

// NewTable creates a Table from per-currency rates into the reporting
// currency, e.g. {"EUR": 1.08} with reporting "USD".
func NewTable(reporting string, rates map[string]float64) *Table {
	converted := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		converted[code] = decimal.NewFromFloat(rate)
	}
	return &Table{reporting: reporting, rates: converted}
}

// Reporting returns the reporting currency code.
func (t *Table) Reporting() string {
	return t.reporting
}

// Rate returns the conversion rate for a currency code. The reporting
// currency and any unconfigured code convert at 1, so amounts pass
// through unchanged rather than failing.
func (t *Table) Rate(code string) decimal.Decimal {
	if code == t.reporting {
		return decimal.NewFromInt(1)
	}
	if r, ok := t.rates[code]; ok {
		return r
	}
	return decimal.NewFromInt(1)
}

// Normalize converts an amount into the reporting currency, preserving sign.
func (t *Table) Normalize(m model.Money) decimal.Decimal {
	return m.Amount.Mul(t.Rate(m.Currency))
}
