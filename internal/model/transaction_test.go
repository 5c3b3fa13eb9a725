package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionIsExpense(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"-42.18", true},
		{"-0.01", true},
		{"0", false},
		{"1500.00", false},
	}
	for _, tt := range tests {
		tx := Transaction{Amount: Money{Amount: decimal.RequireFromString(tt.amount), Currency: "USD"}}
		assert.Equal(t, tt.want, tx.IsExpense(), "IsExpense(%s)", tt.amount)
	}
}

func TestTransactionIsMatched(t *testing.T) {
	assert.False(t, Transaction{State: StateUnmatched}.IsMatched())
	assert.False(t, Transaction{State: StateIgnored}.IsMatched())
	assert.True(t, Transaction{State: StateMatched, ReceiptID: "rcpt-1"}.IsMatched())
}

func TestMoneyString(t *testing.T) {
	m := Money{Amount: decimal.RequireFromString("-1234.5"), Currency: "EUR"}
	assert.Equal(t, "-1234.50 EUR", m.String())

	abs := m.Abs()
	assert.True(t, abs.Equal(decimal.RequireFromString("1234.5")), "Abs() = %s", abs)
	assert.True(t, m.IsNegative())
}
