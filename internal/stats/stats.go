// Package stats computes reconciliation coverage from current match state.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/matchbook-dev/matchbook/internal/currency"
	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/model"
)

// Report is a stateless projection over the working set.
type Report struct {
	ReportingCurrency string

	Transactions      int
	Matched           int
	Unmatched         int
	Ignored           int
	Receipts          int
	UnmatchedReceipts int

	// Matched counts broken down by origin.
	Deterministic int
	Suggested     int
	Manual        int

	// CountCoverage is matched over all non-ignored transactions,
	// income rows included.
	CountCoverage float64

	// ValueCoverage is matched expense value over total expense value in
	// the reporting currency. Only negative amounts feed the denominator,
	// deliberately asymmetric with CountCoverage: count answers "how many
	// rows are handled", value answers "how much spend is corroborated".
	ValueCoverage float64

	MatchedExpenseValue decimal.Decimal
	TotalExpenseValue   decimal.Decimal
}

// Compute recomputes the full report on every call. Three independent
// mutators can change match state between calls, so nothing is cached.
func Compute(ws *ledger.WorkingSet, rates *currency.Table) Report {
	r := Report{
		ReportingCurrency:   rates.Reporting(),
		MatchedExpenseValue: decimal.Zero,
		TotalExpenseValue:   decimal.Zero,
	}

	for _, t := range ws.Transactions() {
		r.Transactions++
		switch t.State {
		case model.StateMatched:
			r.Matched++
			switch t.Origin {
			case model.OriginDeterministic:
				r.Deterministic++
			case model.OriginSuggested:
				r.Suggested++
			case model.OriginManual:
				r.Manual++
			}
		case model.StateIgnored:
			r.Ignored++
		default:
			r.Unmatched++
		}

		if t.IsExpense() {
			value := rates.Normalize(t.Amount).Abs()
			r.TotalExpenseValue = r.TotalExpenseValue.Add(value)
			if t.State == model.StateMatched {
				r.MatchedExpenseValue = r.MatchedExpenseValue.Add(value)
			}
		}
	}

	r.Receipts = len(ws.Receipts())
	r.UnmatchedReceipts = len(ws.UnmatchedReceipts())

	if considered := r.Matched + r.Unmatched; considered > 0 {
		r.CountCoverage = float64(r.Matched) / float64(considered)
	}
	if r.TotalExpenseValue.IsPositive() {
		r.ValueCoverage = r.MatchedExpenseValue.Div(r.TotalExpenseValue).InexactFloat64()
	}

	return r
}
