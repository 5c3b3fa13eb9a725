package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchbook-dev/matchbook/internal/currency"
	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func money(amount, ccy string) model.Money {
	return model.Money{Amount: dec(amount), Currency: ccy}
}

func tx(id string, amount, ccy string) model.Transaction {
	return model.Transaction{
		ID:     id,
		Date:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount: money(amount, ccy),
		State:  model.StateUnmatched,
	}
}

func rcpt(id string, amount, ccy string) model.Receipt {
	return model.Receipt{
		ID:     id,
		Vendor: "Acme Supplies",
		Date:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount: money(amount, ccy),
	}
}

func usdTable() *currency.Table {
	return currency.NewTable("USD", map[string]float64{"EUR": 1.10})
}

func TestComputeEmptySet(t *testing.T) {
	ws := ledger.NewWorkingSet()
	r := Compute(ws, usdTable())

	assert.Zero(t, r.Transactions)
	assert.Zero(t, r.CountCoverage, "zero denominator reports zero, not NaN")
	assert.Zero(t, r.ValueCoverage)
	assert.Equal(t, "USD", r.ReportingCurrency)
}

func TestComputeCountsByOrigin(t *testing.T) {
	ws, err := ledger.FromRecords(
		[]model.Transaction{tx("txn-1", "-10.00", "USD"), tx("txn-2", "-20.00", "USD"), tx("txn-3", "-30.00", "USD"), tx("txn-4", "-40.00", "USD")},
		[]model.Receipt{rcpt("rcpt-1", "10.00", "USD"), rcpt("rcpt-2", "20.00", "USD"), rcpt("rcpt-3", "30.00", "USD")},
	)
	require.NoError(t, err)
	require.NoError(t, ws.Link("txn-1", "rcpt-1", model.OriginDeterministic, "x"))
	require.NoError(t, ws.Link("txn-2", "rcpt-2", model.OriginSuggested, "x"))
	require.NoError(t, ws.Link("txn-3", "rcpt-3", model.OriginManual, "x"))

	r := Compute(ws, usdTable())
	assert.Equal(t, 1, r.Deterministic)
	assert.Equal(t, 1, r.Suggested)
	assert.Equal(t, 1, r.Manual)
	assert.Equal(t, 3, r.Matched)
	assert.Equal(t, 1, r.Unmatched)
	assert.Equal(t, 3, r.Receipts)
	assert.Zero(t, r.UnmatchedReceipts)
	assert.InDelta(t, 0.75, r.CountCoverage, 1e-9)
}

func TestCountCoverageIncludesIncomeExcludesIgnored(t *testing.T) {
	ws, err := ledger.FromRecords(
		[]model.Transaction{
			tx("txn-1", "-50.00", "USD"), // expense, will match
			tx("txn-2", "1500.00", "USD"), // income row counts in the denominator
			tx("txn-3", "-8.00", "USD"),   // will be ignored
		},
		[]model.Receipt{rcpt("rcpt-1", "50.00", "USD")},
	)
	require.NoError(t, err)
	require.NoError(t, ws.Link("txn-1", "rcpt-1", model.OriginDeterministic, "x"))
	require.NoError(t, ws.Ignore("txn-3"))

	r := Compute(ws, usdTable())
	assert.Equal(t, 1, r.Ignored)
	assert.InDelta(t, 0.5, r.CountCoverage, 1e-9, "matched 1 of 2 non-ignored rows")
}

func TestValueCoverageCountsOnlyExpenses(t *testing.T) {
	// The income row inflates nothing here: value coverage is expense-only,
	// even though count coverage includes it.
	ws, err := ledger.FromRecords(
		[]model.Transaction{
			tx("txn-1", "-75.00", "USD"),
			tx("txn-2", "-25.00", "USD"),
			tx("txn-3", "9999.00", "USD"),
		},
		[]model.Receipt{rcpt("rcpt-1", "75.00", "USD")},
	)
	require.NoError(t, err)
	require.NoError(t, ws.Link("txn-1", "rcpt-1", model.OriginDeterministic, "x"))

	r := Compute(ws, usdTable())
	assert.True(t, r.TotalExpenseValue.Equal(dec("100")), "total expense %s", r.TotalExpenseValue)
	assert.True(t, r.MatchedExpenseValue.Equal(dec("75")))
	assert.InDelta(t, 0.75, r.ValueCoverage, 1e-9)
	assert.InDelta(t, 1.0/3.0, r.CountCoverage, 1e-9)
}

func TestValueCoverageDenominatorKeepsIgnoredExpenses(t *testing.T) {
	// The denominator filters on sign only. An ignored expense still
	// contributes value, unlike in the count denominator.
	ws, err := ledger.FromRecords(
		[]model.Transaction{tx("txn-1", "-60.00", "USD"), tx("txn-2", "-40.00", "USD")},
		[]model.Receipt{rcpt("rcpt-1", "60.00", "USD")},
	)
	require.NoError(t, err)
	require.NoError(t, ws.Link("txn-1", "rcpt-1", model.OriginDeterministic, "x"))
	require.NoError(t, ws.Ignore("txn-2"))

	r := Compute(ws, usdTable())
	assert.True(t, r.TotalExpenseValue.Equal(dec("100")))
	assert.InDelta(t, 0.6, r.ValueCoverage, 1e-9)
	assert.InDelta(t, 1.0, r.CountCoverage, 1e-9, "the ignored row leaves the count denominator")
}

func TestValueCoverageNormalizesCurrency(t *testing.T) {
	ws, err := ledger.FromRecords(
		[]model.Transaction{tx("txn-1", "-100.00", "EUR"), tx("txn-2", "-90.00", "USD")},
		[]model.Receipt{rcpt("rcpt-1", "100.00", "EUR")},
	)
	require.NoError(t, err)
	require.NoError(t, ws.Link("txn-1", "rcpt-1", model.OriginDeterministic, "x"))

	r := Compute(ws, usdTable())
	// 100 EUR at 1.10 = 110 USD matched, of 200 USD total expense.
	assert.True(t, r.MatchedExpenseValue.Equal(dec("110")), "matched %s", r.MatchedExpenseValue)
	assert.True(t, r.TotalExpenseValue.Equal(dec("200")))
	assert.InDelta(t, 0.55, r.ValueCoverage, 1e-9)
}

func TestValueCoverageCompleteIsOne(t *testing.T) {
	ws, err := ledger.FromRecords(
		[]model.Transaction{tx("txn-1", "-10.00", "USD"), tx("txn-2", "-20.00", "USD")},
		[]model.Receipt{rcpt("rcpt-1", "10.00", "USD"), rcpt("rcpt-2", "20.00", "USD")},
	)
	require.NoError(t, err)
	require.NoError(t, ws.Link("txn-1", "rcpt-1", model.OriginDeterministic, "x"))
	require.NoError(t, ws.Link("txn-2", "rcpt-2", model.OriginManual, "x"))

	r := Compute(ws, usdTable())
	assert.Equal(t, 1.0, r.ValueCoverage, "every expense matched")
	assert.Equal(t, 1.0, r.CountCoverage)
}

func TestComputeIsPureProjection(t *testing.T) {
	ws, err := ledger.FromRecords(
		[]model.Transaction{tx("txn-1", "-10.00", "USD")},
		[]model.Receipt{rcpt("rcpt-1", "10.00", "USD")},
	)
	require.NoError(t, err)

	before := Compute(ws, usdTable())
	assert.Zero(t, before.Matched)

	require.NoError(t, ws.Link("txn-1", "rcpt-1", model.OriginManual, "x"))
	after := Compute(ws, usdTable())
	assert.Equal(t, 1, after.Matched, "recomputed fresh from current state")

	require.NoError(t, ws.Unlink("txn-1"))
	assert.Zero(t, Compute(ws, usdTable()).Matched)
}
