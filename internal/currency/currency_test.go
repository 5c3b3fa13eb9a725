package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/matchbook-dev/matchbook/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestNormalize(t *testing.T) {
	table := NewTable("USD", map[string]float64{"EUR": 1.08, "GBP": 1.25})

	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"100", "USD", "100"},
		{"100", "EUR", "108"},
		{"-40", "GBP", "-50"},
		{"100", "JPY", "100"}, // no configured rate, passes through at 1
	}
	for _, tt := range tests {
		got := table.Normalize(model.Money{Amount: dec(tt.amount), Currency: tt.currency})
		assert.True(t, got.Equal(dec(tt.want)), "Normalize(%s %s) = %s, want %s", tt.amount, tt.currency, got, tt.want)
	}
}

func TestRateDefaultsToOne(t *testing.T) {
	table := NewTable("USD", nil)

	assert.True(t, table.Rate("USD").Equal(dec("1")))
	assert.True(t, table.Rate("CHF").Equal(dec("1")))
	assert.Equal(t, "USD", table.Reporting())
}

func TestNormalizePreservesSign(t *testing.T) {
	table := NewTable("USD", map[string]float64{"EUR": 1.1})

	expense := table.Normalize(model.Money{Amount: dec("-20"), Currency: "EUR"})
	assert.True(t, expense.IsNegative())
	assert.True(t, expense.Equal(dec("-22")), "got %s", expense)
}
