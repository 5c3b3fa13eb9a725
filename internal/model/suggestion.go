package model

import "time"

// MatchSuggestion is a fuzzy-match candidate awaiting explicit review.
// A suggestion never mutates the ledger until it is accepted.
type MatchSuggestion struct {
	TransactionID string
	ReceiptID     string
	Confidence    float64 // 0..1, already filtered to the provider's floor
	Rationale     string
	RequestedAt   time.Time
}
