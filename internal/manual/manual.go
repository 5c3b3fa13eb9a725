// Package manual applies operator-selected link and unlink operations.
package manual

import (
	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/model"
)

// Rationale is the fixed provenance note for operator links without a note.
const Rationale = "manually linked by operator"

// Controller validates an operator's selection and applies it against the
// live working set. Exactly one transaction and one receipt must be
// designated before Link; more or fewer is a reported input error, never
// silently resolved.
type Controller struct {
	txIDs   []string
	rcptIDs []string
}

// NewController returns a Controller with an empty selection.
func NewController() *Controller {
	return &Controller{}
}

// DesignateTransaction adds a transaction to the selection. Designating the
// same id again is a no-op.
func (c *Controller) DesignateTransaction(id string) {
	for _, v := range c.txIDs {
		if v == id {
			return
		}
	}
	c.txIDs = append(c.txIDs, id)
}

// DesignateReceipt adds a receipt to the selection.
func (c *Controller) DesignateReceipt(id string) {
	for _, v := range c.rcptIDs {
		if v == id {
			return
		}
	}
	c.rcptIDs = append(c.rcptIDs, id)
}

// Selection returns the currently designated transaction and receipt ids.
func (c *Controller) Selection() (txIDs, receiptIDs []string) {
	return c.txIDs, c.rcptIDs
}

// Clear drops the selection.
func (c *Controller) Clear() {
	c.txIDs = nil
	c.rcptIDs = nil
}

// Link applies the selection as a manual match. Preconditions are checked
// by the working set against its live state, not a snapshot. On success the
// selection is cleared; on failure it is kept so the operator can adjust it.
// An empty note falls back to the fixed rationale.
func (c *Controller) Link(ws *ledger.WorkingSet, note string) error {
	if len(c.txIDs) != 1 || len(c.rcptIDs) != 1 {
		return ledger.InputError{
			Msg: "manual link needs exactly one transaction and one receipt designated",
		}
	}
	rationale := Rationale
	if note != "" {
		rationale = note
	}
	if err := ws.Link(c.txIDs[0], c.rcptIDs[0], model.OriginManual, rationale); err != nil {
		return err
	}
	c.Clear()
	return nil
}

// Unlink releases a matched pair, returning both sides to the available
// pool. This is the sole path back for any subsequent matching pass.
func (c *Controller) Unlink(ws *ledger.WorkingSet, txID string) error {
	return ws.Unlink(txID)
}
