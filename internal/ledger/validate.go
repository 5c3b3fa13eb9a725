package ledger

import (
	"fmt"

	"github.com/matchbook-dev/matchbook/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	ID          string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.ID, e.Description)
}

// Validate enforces 5 invariants on raw ledger records:
//
//	1. a receipt is matched to at most one transaction
//	2. a transaction is matched iff it carries a receipt id; ignored and
//	   unmatched transactions carry none
//	3. origin and rationale are present on matched transactions and absent
//	   otherwise, always as a pair
//	4. a carried receipt id refers to an existing receipt
//	5. transaction and receipt ids are unique
//
// Used on load and by tests; in-memory mutation goes through WorkingSet,
// which preserves these by construction.
func Validate(txs []model.Transaction, receipts []model.Receipt) []ValidationError {
	var errs []ValidationError

	receiptIDs := make(map[string]bool, len(receipts))
	for _, r := range receipts {
		if receiptIDs[r.ID] {
			errs = append(errs, ValidationError{
				Invariant:   5,
				ID:          r.ID,
				Description: "duplicate receipt id",
			})
		}
		receiptIDs[r.ID] = true
	}

	txIDs := make(map[string]bool, len(txs))
	owners := make(map[string]string) // receipt id -> first owning tx
	for _, t := range txs {
		if txIDs[t.ID] {
			errs = append(errs, ValidationError{
				Invariant:   5,
				ID:          t.ID,
				Description: "duplicate transaction id",
			})
		}
		txIDs[t.ID] = true

		matched := t.State == model.StateMatched
		hasReceipt := t.ReceiptID != ""
		if matched != hasReceipt {
			errs = append(errs, ValidationError{
				Invariant:   2,
				ID:          t.ID,
				Description: fmt.Sprintf("state %q with receipt id %q", t.State, t.ReceiptID),
			})
		}

		hasOrigin := t.Origin != ""
		hasRationale := t.Rationale != ""
		if hasOrigin != hasRationale {
			errs = append(errs, ValidationError{
				Invariant:   3,
				ID:          t.ID,
				Description: "origin and rationale must be set together",
			})
		}
		if matched && !hasOrigin {
			errs = append(errs, ValidationError{
				Invariant:   3,
				ID:          t.ID,
				Description: "matched transaction without provenance",
			})
		}
		if !matched && hasOrigin && hasRationale {
			errs = append(errs, ValidationError{
				Invariant:   3,
				ID:          t.ID,
				Description: fmt.Sprintf("%s transaction carries provenance", t.State),
			})
		}

		if hasReceipt {
			if !receiptIDs[t.ReceiptID] {
				errs = append(errs, ValidationError{
					Invariant:   4,
					ID:          t.ID,
					Description: fmt.Sprintf("unknown receipt %s", t.ReceiptID),
				})
			}
			if owner, taken := owners[t.ReceiptID]; taken {
				errs = append(errs, ValidationError{
					Invariant:   1,
					ID:          t.ID,
					Description: fmt.Sprintf("receipt %s already matched to %s", t.ReceiptID, owner),
				})
			} else {
				owners[t.ReceiptID] = t.ID
			}
		}
	}

	return errs
}
