package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTransactionID(t *testing.T) {
	got := NewTransactionID()
	assert.True(t, IsTransactionID(got))
	assert.Len(t, got, len("txn-")+8)
}

func TestNewReceiptID(t *testing.T) {
	got := NewReceiptID()
	assert.True(t, IsReceiptID(got))
	assert.Len(t, got, len("rcpt-")+8)
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewTransactionID()
		assert.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
	}
}

func TestIsTransactionID(t *testing.T) {
	assert.True(t, IsTransactionID("txn-3f8a91c2"))
	assert.False(t, IsTransactionID("rcpt-3f8a91c2"))
	assert.False(t, IsTransactionID(""))
}

func TestIsReceiptID(t *testing.T) {
	assert.True(t, IsReceiptID("rcpt-9d04e7ba"))
	assert.False(t, IsReceiptID("txn-9d04e7ba"))
	assert.False(t, IsReceiptID(""))
}
