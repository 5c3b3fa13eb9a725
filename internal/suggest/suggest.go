// Package suggest manages the fuzzy-match review workflow: requesting
// candidate pairs from an external capability, holding them as pending
// suggestions, and applying accept or dismiss decisions against the live
// working set. A suggestion never mutates the ledger until accepted.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/logger"
	"github.com/matchbook-dev/matchbook/internal/model"
)

// defaultRationale fills in when a provider returns a pair without one, so
// provenance fields always land complete.
const defaultRationale = "suggested by fuzzy match"

// TransactionSummary is the reduced transaction projection sent to the
// provider. Currency is deliberately omitted to bound payload size.
type TransactionSummary struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// ReceiptSummary is the reduced receipt projection sent to the provider.
type ReceiptSummary struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Vendor string `json:"vendor"`
	Amount string `json:"amount"`
}

// Provider is the consumed fuzzy-match capability. Implementations apply
// their own confidence floor and return only pairs they stand behind.
// Failures must surface as errors, never as an empty result.
type Provider interface {
	Suggest(ctx context.Context, txs []TransactionSummary, receipts []ReceiptSummary) ([]model.MatchSuggestion, error)
}

// Orchestrator owns the pending suggestion list. It never applies a
// suggestion on its own; every acceptance re-validates against the live
// working set, because the set may have changed while the request was in
// flight or the suggestion sat waiting for review.
type Orchestrator struct {
	provider Provider
	pending  []model.MatchSuggestion
}

// NewOrchestrator creates an Orchestrator over a provider.
func NewOrchestrator(p Provider) *Orchestrator {
	return &Orchestrator{provider: p}
}

// Restore reloads a previously persisted pending list.
func (o *Orchestrator) Restore(pending []model.MatchSuggestion) {
	o.pending = append([]model.MatchSuggestion(nil), pending...)
}

// Pending returns a copy of the pending suggestions.
func (o *Orchestrator) Pending() []model.MatchSuggestion {
	return append([]model.MatchSuggestion(nil), o.pending...)
}

// Request snapshots the unmatched residue of the working set, asks the
// provider for candidate pairs, and replaces the pending list with the
// result. Zero suggestions is a normal outcome, distinct from a provider
// failure: errors propagate unchanged and leave the previous pending list
// alone. With nothing left to match on either side the provider is not
// called at all. The caller bounds latency through ctx; expiry counts as a
// capability failure.
func (o *Orchestrator) Request(ctx context.Context, ws *ledger.WorkingSet) ([]model.MatchSuggestion, error) {
	log := logger.FromContext(ctx)

	txs := ws.UnmatchedTransactions()
	receipts := ws.UnmatchedReceipts()
	if len(txs) == 0 || len(receipts) == 0 {
		o.pending = nil
		return nil, nil
	}

	txSummaries := make([]TransactionSummary, 0, len(txs))
	knownTx := make(map[string]bool, len(txs))
	for _, t := range txs {
		txSummaries = append(txSummaries, TransactionSummary{
			ID:          t.ID,
			Date:        t.Date.Format("2006-01-02"),
			Description: t.Description,
			Amount:      t.Amount.Amount.StringFixed(2),
		})
		knownTx[t.ID] = true
	}
	rcptSummaries := make([]ReceiptSummary, 0, len(receipts))
	knownRcpt := make(map[string]bool, len(receipts))
	for _, r := range receipts {
		rcptSummaries = append(rcptSummaries, ReceiptSummary{
			ID:     r.ID,
			Date:   r.Date.Format("2006-01-02"),
			Vendor: r.Vendor,
			Amount: r.Amount.Amount.StringFixed(2),
		})
		knownRcpt[r.ID] = true
	}

	results, err := o.provider.Suggest(ctx, txSummaries, rcptSummaries)
	if err != nil {
		return nil, fmt.Errorf("fuzzy match capability: %w", err)
	}

	type pairKey struct{ tx, rcpt string }

	now := time.Now().UTC()
	seen := make(map[pairKey]bool, len(results))
	var accepted []model.MatchSuggestion
	for _, s := range results {
		if !knownTx[s.TransactionID] || !knownRcpt[s.ReceiptID] {
			log.Warn().
				Str("transaction", s.TransactionID).
				Str("receipt", s.ReceiptID).
				Msg("dropping suggestion for ids outside the request")
			continue
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			log.Warn().
				Str("transaction", s.TransactionID).
				Float64("confidence", s.Confidence).
				Msg("dropping suggestion with out-of-range confidence")
			continue
		}
		pair := pairKey{s.TransactionID, s.ReceiptID}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		if s.Rationale == "" {
			s.Rationale = defaultRationale
		}
		if s.RequestedAt.IsZero() {
			s.RequestedAt = now
		}
		accepted = append(accepted, s)
	}

	log.Debug().
		Int("transactions", len(txSummaries)).
		Int("receipts", len(rcptSummaries)).
		Int("suggestions", len(accepted)).
		Msg("suggestion request complete")

	o.pending = accepted
	return o.Pending(), nil
}

// Accept applies a pending suggestion. The pair is re-validated against the
// current match state, not the snapshot the suggestion was computed from:
// if the transaction or receipt was matched, ignored, or removed in the
// interim, the stale suggestion is dropped, nothing is mutated, and a
// ConflictError reports why. On success the transaction carries
// OriginSuggested and the provider's rationale.
func (o *Orchestrator) Accept(ws *ledger.WorkingSet, txID, receiptID string) error {
	s, ok := o.take(txID, receiptID)
	if !ok {
		return ledger.InputError{Msg: fmt.Sprintf("no pending suggestion for %s/%s", txID, receiptID)}
	}

	err := ws.Link(txID, receiptID, model.OriginSuggested, s.Rationale)
	if err == nil {
		return nil
	}

	var inputErr ledger.InputError
	if errors.As(err, &inputErr) {
		// The transaction or receipt was removed while the suggestion was
		// pending; report it as gone stale rather than as caller input.
		return ledger.ConflictError{TransactionID: txID, ReceiptID: receiptID, Reason: inputErr.Msg}
	}
	return err
}

// Dismiss removes a pending suggestion with no other state change.
func (o *Orchestrator) Dismiss(txID, receiptID string) error {
	if _, ok := o.take(txID, receiptID); !ok {
		return ledger.InputError{Msg: fmt.Sprintf("no pending suggestion for %s/%s", txID, receiptID)}
	}
	return nil
}

// take removes and returns the pending suggestion for a pair.
func (o *Orchestrator) take(txID, receiptID string) (model.MatchSuggestion, bool) {
	for i, s := range o.pending {
		if s.TransactionID == txID && s.ReceiptID == receiptID {
			o.pending = append(o.pending[:i], o.pending[i+1:]...)
			return s, true
		}
	}
	return model.MatchSuggestion{}, false
}
