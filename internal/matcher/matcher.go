// Package matcher implements the rule-based deterministic matching pass.
package matcher

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/model"
)

// Rationale is the fixed provenance note attached to every deterministic match.
const Rationale = "amount and date match within tolerance"

// Config bounds what counts as a deterministic match.
type Config struct {
	WindowDays      int             // maximum date distance in days, inclusive
	AmountTolerance decimal.Decimal // strict upper bound on magnitude difference
}

// DefaultConfig mirrors the shipped matchbook.yaml defaults.
func DefaultConfig() Config {
	return Config{
		WindowDays:      5,
		AmountTolerance: decimal.NewFromFloat(0.05),
	}
}

// Run executes one greedy pass over the working set, linking each unmatched,
// non-ignored transaction to the first free receipt in its amount bucket that
// agrees on currency, magnitude, and date. The pass is order-dependent by
// construction: transactions are visited in working-set order and a consumed
// receipt is gone for the rest of the run, so it is not globally optimal.
// Re-running with unchanged inputs yields zero new matches. An unmatched
// transaction is not an error; Run only reports how many new links it made.
func Run(ws *ledger.WorkingSet, cfg Config) int {
	// Bucket the available receipts by rounded magnitude to bound the
	// comparison cost per transaction.
	buckets := make(map[int64][]*model.Receipt)
	for _, r := range ws.UnmatchedReceipts() {
		key := r.Amount.Abs().Round(0).IntPart()
		buckets[key] = append(buckets[key], r)
	}

	consumed := make(map[string]bool)
	matched := 0
	for _, t := range ws.Transactions() {
		if t.State != model.StateUnmatched {
			continue
		}
		key := t.Amount.Abs().Round(0).IntPart()
		for _, r := range buckets[key] {
			if consumed[r.ID] || !accepts(cfg, t, r) {
				continue
			}
			if ws.Link(t.ID, r.ID, model.OriginDeterministic, Rationale) == nil {
				consumed[r.ID] = true
				matched++
				break
			}
		}
	}
	return matched
}

func accepts(cfg Config, t *model.Transaction, r *model.Receipt) bool {
	if t.Amount.Currency != r.Amount.Currency {
		return false
	}
	diff := t.Amount.Abs().Sub(r.Amount.Abs()).Abs()
	if !diff.LessThan(cfg.AmountTolerance) {
		return false
	}
	return withinWindow(t.Date, r.Date, cfg.WindowDays)
}

func withinWindow(a, b time.Time, days int) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= time.Duration(days)*24*time.Hour
}
