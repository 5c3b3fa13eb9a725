package model

import "time"

// MatchState is the reconciliation state of a bank transaction.
type MatchState string

const (
	StateUnmatched MatchState = "unmatched"
	StateMatched   MatchState = "matched"
	StateIgnored   MatchState = "ignored"
)

// MatchOrigin records which path produced a match.
type MatchOrigin string

const (
	OriginDeterministic MatchOrigin = "deterministic"
	OriginSuggested     MatchOrigin = "suggested"
	OriginManual        MatchOrigin = "manual"
)

// Transaction is a parsed bank statement row tracked through reconciliation.
type Transaction struct {
	ID          string
	Date        time.Time
	Description string
	Amount      Money  // negative = expense, positive = income
	Reference   string // statement reference, used for import dedup
	State       MatchState
	ReceiptID   string      // set iff State == StateMatched
	Origin      MatchOrigin // set and cleared together with ReceiptID
	Rationale   string      // set and cleared together with Origin
}

// IsExpense reports whether the transaction is money out.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsMatched reports whether the transaction carries a receipt link.
func (t Transaction) IsMatched() bool {
	return t.State == StateMatched
}
