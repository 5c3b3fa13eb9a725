// Package ledger holds the in-memory working set of bank transactions and
// expense receipts, and the match operations that keep it consistent.
package ledger

import (
	"fmt"

	"github.com/matchbook-dev/matchbook/internal/model"
)

// WorkingSet is the single owning handle over the loaded transactions and
// receipts. All match state flows through it; there is no package-level
// state. Slice order is insertion order, which also defines processing
// order for the deterministic matcher.
type WorkingSet struct {
	transactions []*model.Transaction
	receipts     []*model.Receipt
	txByID       map[string]*model.Transaction
	txByRef      map[string]*model.Transaction
	receiptByID  map[string]*model.Receipt
	matchedTx    map[string]string // receipt ID -> owning transaction ID
}

// NewWorkingSet returns an empty working set.
func NewWorkingSet() *WorkingSet {
	return &WorkingSet{
		txByID:      make(map[string]*model.Transaction),
		txByRef:     make(map[string]*model.Transaction),
		receiptByID: make(map[string]*model.Receipt),
		matchedTx:   make(map[string]string),
	}
}

// FromRecords builds a working set from persisted records, validating the
// reconciliation invariants first. Records are copied; the caller's slices
// stay untouched.
func FromRecords(txs []model.Transaction, receipts []model.Receipt) (*WorkingSet, error) {
	if errs := Validate(txs, receipts); len(errs) > 0 {
		return nil, fmt.Errorf("invalid ledger state (%d violations): %w", len(errs), errs[0])
	}

	ws := NewWorkingSet()
	for _, r := range receipts {
		rc := r
		ws.receipts = append(ws.receipts, &rc)
		ws.receiptByID[rc.ID] = &rc
	}
	for _, t := range txs {
		tc := t
		if tc.State == "" {
			tc.State = model.StateUnmatched
		}
		ws.transactions = append(ws.transactions, &tc)
		ws.txByID[tc.ID] = &tc
		if tc.Reference != "" {
			ws.txByRef[tc.Reference] = &tc
		}
		if tc.ReceiptID != "" {
			ws.matchedTx[tc.ReceiptID] = tc.ID
		}
	}
	return ws, nil
}

// Transactions returns all transactions in insertion order.
func (ws *WorkingSet) Transactions() []*model.Transaction {
	return ws.transactions
}

// Receipts returns all receipts in insertion order.
func (ws *WorkingSet) Receipts() []*model.Receipt {
	return ws.receipts
}

// Transaction returns a transaction by ID.
func (ws *WorkingSet) Transaction(id string) (*model.Transaction, bool) {
	t, ok := ws.txByID[id]
	return t, ok
}

// Receipt returns a receipt by ID.
func (ws *WorkingSet) Receipt(id string) (*model.Receipt, bool) {
	r, ok := ws.receiptByID[id]
	return r, ok
}

// MatchFor returns the ID of the transaction a receipt is matched to.
func (ws *WorkingSet) MatchFor(receiptID string) (string, bool) {
	txID, ok := ws.matchedTx[receiptID]
	return txID, ok
}

// UnmatchedTransactions returns transactions still awaiting a match,
// excluding ignored ones.
func (ws *WorkingSet) UnmatchedTransactions() []*model.Transaction {
	var out []*model.Transaction
	for _, t := range ws.transactions {
		if t.State == model.StateUnmatched {
			out = append(out, t)
		}
	}
	return out
}

// UnmatchedReceipts returns receipts not currently matched to any transaction.
func (ws *WorkingSet) UnmatchedReceipts() []*model.Receipt {
	var out []*model.Receipt
	for _, r := range ws.receipts {
		if _, taken := ws.matchedTx[r.ID]; !taken {
			out = append(out, r)
		}
	}
	return out
}

// AddStatement appends a parsed statement batch. Rows whose reference or ID
// is already present are skipped, so re-importing the same file is safe.
// Returns the number of rows added and skipped.
func (ws *WorkingSet) AddStatement(batch []model.Transaction) (added, skipped int) {
	for _, t := range batch {
		if _, dup := ws.txByID[t.ID]; dup {
			skipped++
			continue
		}
		if t.Reference != "" {
			if _, dup := ws.txByRef[t.Reference]; dup {
				skipped++
				continue
			}
		}
		tc := t
		if tc.State == "" {
			tc.State = model.StateUnmatched
		}
		ws.transactions = append(ws.transactions, &tc)
		ws.txByID[tc.ID] = &tc
		if tc.Reference != "" {
			ws.txByRef[tc.Reference] = &tc
		}
		added++
	}
	return added, skipped
}

// AddReceipt adds a single receipt to the pool.
func (ws *WorkingSet) AddReceipt(r model.Receipt) error {
	if r.ID == "" {
		return inputf("receipt has no id")
	}
	if _, dup := ws.receiptByID[r.ID]; dup {
		return inputf("receipt %s already exists", r.ID)
	}
	rc := r
	ws.receipts = append(ws.receipts, &rc)
	ws.receiptByID[rc.ID] = &rc
	return nil
}

// RemoveTransaction deletes a transaction. If it was matched, its receipt
// returns to the available pool.
func (ws *WorkingSet) RemoveTransaction(id string) error {
	t, ok := ws.txByID[id]
	if !ok {
		return inputf("unknown transaction %s", id)
	}
	if t.ReceiptID != "" {
		delete(ws.matchedTx, t.ReceiptID)
	}
	delete(ws.txByID, id)
	if t.Reference != "" {
		delete(ws.txByRef, t.Reference)
	}
	for i, x := range ws.transactions {
		if x.ID == id {
			ws.transactions = append(ws.transactions[:i], ws.transactions[i+1:]...)
			break
		}
	}
	return nil
}

// RemoveReceipt deletes a receipt. If it was matched, the owning transaction
// has its match fields cleared and returns to the unmatched pool.
func (ws *WorkingSet) RemoveReceipt(id string) error {
	if _, ok := ws.receiptByID[id]; !ok {
		return inputf("unknown receipt %s", id)
	}
	if txID, matched := ws.matchedTx[id]; matched {
		t := ws.txByID[txID]
		clearMatch(t)
		delete(ws.matchedTx, id)
	}
	delete(ws.receiptByID, id)
	for i, x := range ws.receipts {
		if x.ID == id {
			ws.receipts = append(ws.receipts[:i], ws.receipts[i+1:]...)
			break
		}
	}
	return nil
}

// Link matches a transaction to a receipt, recording provenance. It is the
// one mutation path shared by all three match strategies, so the invariants
// hold no matter who calls it: the receipt must be free, the transaction
// must be unmatched and not ignored, and origin plus rationale always land
// together.
func (ws *WorkingSet) Link(txID, receiptID string, origin model.MatchOrigin, rationale string) error {
	t, ok := ws.txByID[txID]
	if !ok {
		return inputf("unknown transaction %s", txID)
	}
	if _, ok := ws.receiptByID[receiptID]; !ok {
		return inputf("unknown receipt %s", receiptID)
	}
	if origin == "" || rationale == "" {
		return inputf("link requires both origin and rationale")
	}
	switch t.State {
	case model.StateMatched:
		return ConflictError{TransactionID: txID, ReceiptID: receiptID, Reason: "transaction already matched to " + t.ReceiptID}
	case model.StateIgnored:
		return ConflictError{TransactionID: txID, ReceiptID: receiptID, Reason: "transaction is ignored"}
	}
	if owner, taken := ws.matchedTx[receiptID]; taken {
		return ConflictError{TransactionID: txID, ReceiptID: receiptID, Reason: "receipt already matched to " + owner}
	}

	t.State = model.StateMatched
	t.ReceiptID = receiptID
	t.Origin = origin
	t.Rationale = rationale
	ws.matchedTx[receiptID] = txID
	return nil
}

// Unlink releases a matched pair. Both the transaction and its receipt
// become available again; this is the only way back to the pool.
func (ws *WorkingSet) Unlink(txID string) error {
	t, ok := ws.txByID[txID]
	if !ok {
		return inputf("unknown transaction %s", txID)
	}
	if t.State != model.StateMatched {
		return inputf("transaction %s is not matched", txID)
	}
	delete(ws.matchedTx, t.ReceiptID)
	clearMatch(t)
	return nil
}

// Ignore marks an unmatched transaction as ignored, removing it from all
// matching. Ignoring an already ignored transaction is a no-op.
func (ws *WorkingSet) Ignore(txID string) error {
	t, ok := ws.txByID[txID]
	if !ok {
		return inputf("unknown transaction %s", txID)
	}
	switch t.State {
	case model.StateIgnored:
		return nil
	case model.StateMatched:
		return inputf("transaction %s is matched; unlink it first", txID)
	}
	t.State = model.StateIgnored
	return nil
}

// Unignore returns an ignored transaction to the unmatched pool.
func (ws *WorkingSet) Unignore(txID string) error {
	t, ok := ws.txByID[txID]
	if !ok {
		return inputf("unknown transaction %s", txID)
	}
	switch t.State {
	case model.StateUnmatched:
		return nil
	case model.StateMatched:
		return inputf("transaction %s is matched, not ignored", txID)
	}
	t.State = model.StateUnmatched
	return nil
}

// TransactionRecords returns value copies of all transactions, for
// persistence and validation.
func (ws *WorkingSet) TransactionRecords() []model.Transaction {
	out := make([]model.Transaction, 0, len(ws.transactions))
	for _, t := range ws.transactions {
		out = append(out, *t)
	}
	return out
}

// ReceiptRecords returns value copies of all receipts.
func (ws *WorkingSet) ReceiptRecords() []model.Receipt {
	out := make([]model.Receipt, 0, len(ws.receipts))
	for _, r := range ws.receipts {
		out = append(out, *r)
	}
	return out
}

func clearMatch(t *model.Transaction) {
	t.State = model.StateUnmatched
	t.ReceiptID = ""
	t.Origin = ""
	t.Rationale = ""
}
