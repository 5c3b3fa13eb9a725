package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewTransactionID returns a transaction ID like "txn-3f8a91c2".
func NewTransactionID() string {
	return "txn-" + short()
}

// NewReceiptID returns a receipt ID like "rcpt-9d04e7ba".
func NewReceiptID() string {
	return "rcpt-" + short()
}

// short returns the first 8 hex characters of a random UUID. Full UUIDs
// make the ledger CSVs painful to read and to type on the command line;
// 32 random bits is plenty for a single book.
func short() string {
	u := uuid.NewString()
	return strings.ReplaceAll(u, "-", "")[:8]
}

// IsTransactionID reports whether s looks like a generated transaction ID.
func IsTransactionID(s string) bool {
	return strings.HasPrefix(s, "txn-")
}

// IsReceiptID reports whether s looks like a generated receipt ID.
func IsReceiptID(s string) bool {
	return strings.HasPrefix(s, "rcpt-")
}
