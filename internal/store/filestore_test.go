package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func usd(s string) model.Money {
	return model.Money{Amount: dec(s), Currency: "USD"}
}

func testWorkingSet(t *testing.T) *ledger.WorkingSet {
	t.Helper()
	ws, err := ledger.FromRecords(
		[]model.Transaction{
			{ID: "txn-1", Date: date(2025, 1, 3), Description: "GITHUB", Amount: usd("-4.00"), Reference: "chase_20250103_GITHUB", State: model.StateUnmatched},
			{ID: "txn-2", Date: date(2025, 1, 7), Description: "STARBUCKS", Amount: usd("-6.45"), State: model.StateUnmatched},
		},
		[]model.Receipt{
			{ID: "rcpt-1", Vendor: "GitHub", Date: date(2025, 1, 3), Amount: usd("4.00"), Category: "software", DocumentRef: "receipts/github-jan.pdf"},
			{ID: "rcpt-2", Vendor: "Starbucks", Date: date(2025, 1, 7), Amount: usd("6.45"), DocumentRef: "receipts/coffee.jpg"},
		},
	)
	require.NoError(t, err)
	return ws
}

func TestFileStore_LoadMissingFiles(t *testing.T) {
	s := NewFileStore(t.TempDir())

	ws, pending, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ws.Transactions())
	assert.Empty(t, ws.Receipts())
	assert.Nil(t, pending)
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	ws := testWorkingSet(t)
	require.NoError(t, ws.Link("txn-1", "rcpt-1", model.OriginManual, "manually linked by operator"))

	pending := []model.MatchSuggestion{
		{TransactionID: "txn-2", ReceiptID: "rcpt-2", Confidence: 0.85, Rationale: "same vendor and amount", RequestedAt: date(2025, 2, 1)},
	}

	require.NoError(t, s.Save(context.Background(), ws, pending))

	loaded, loadedPending, err := NewFileStore(root).Load(context.Background())
	require.NoError(t, err)

	tx, ok := loaded.Transaction("txn-1")
	require.True(t, ok)
	assert.Equal(t, model.StateMatched, tx.State)
	assert.Equal(t, "rcpt-1", tx.ReceiptID)
	assert.Equal(t, model.OriginManual, tx.Origin)
	assert.Equal(t, "manually linked by operator", tx.Rationale)
	assert.Equal(t, "chase_20250103_GITHUB", tx.Reference)

	rcpt, ok := loaded.Receipt("rcpt-2")
	require.True(t, ok)
	assert.Equal(t, "Starbucks", rcpt.Vendor)
	assert.Equal(t, "receipts/coffee.jpg", rcpt.DocumentRef)

	require.Len(t, loadedPending, 1)
	assert.Equal(t, "txn-2", loadedPending[0].TransactionID)
	assert.InDelta(t, 0.85, loadedPending[0].Confidence, 1e-9)
	assert.True(t, loadedPending[0].RequestedAt.Equal(date(2025, 2, 1)))
}

func TestFileStore_SaveCreatesLedgerDir(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	require.NoError(t, s.Save(context.Background(), testWorkingSet(t), nil))

	info, err := os.Stat(filepath.Join(root, "ledger"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(root, "ledger", "transactions.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "ledger", "receipts.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "ledger", "suggestions.csv"))
	assert.NoError(t, err)
}

func TestFileStore_QuotaShedsDocumentRefs(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)
	s.MaxBytes = 1

	ws := testWorkingSet(t)
	require.NoError(t, ws.Link("txn-1", "rcpt-1", model.OriginManual, "manually linked by operator"))

	err := s.Save(context.Background(), ws, nil)
	require.Error(t, err)

	var quota QuotaError
	require.True(t, errors.As(err, &quota))
	assert.Equal(t, 2, quota.Shed)
	assert.Equal(t, int64(1), quota.Limit)

	// The persisted form lost its document refs but kept the match.
	loaded, _, err := NewFileStore(root).Load(context.Background())
	require.NoError(t, err)

	rcpt, ok := loaded.Receipt("rcpt-1")
	require.True(t, ok)
	assert.Empty(t, rcpt.DocumentRef)

	tx, ok := loaded.Transaction("txn-1")
	require.True(t, ok)
	assert.Equal(t, model.StateMatched, tx.State)
	assert.Equal(t, "rcpt-1", tx.ReceiptID)

	// The live working set is untouched.
	live, ok := ws.Receipt("rcpt-1")
	require.True(t, ok)
	assert.Equal(t, "receipts/github-jan.pdf", live.DocumentRef)
}

func TestFileStore_NoQuotaMeansNoDegradation(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	require.NoError(t, s.Save(context.Background(), testWorkingSet(t), nil))

	loaded, _, err := NewFileStore(root).Load(context.Background())
	require.NoError(t, err)

	rcpt, ok := loaded.Receipt("rcpt-1")
	require.True(t, ok)
	assert.Equal(t, "receipts/github-jan.pdf", rcpt.DocumentRef)
}

func TestFileStore_LoadRejectsCorruptState(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "ledger")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	// A matched transaction with no receipt id violates the invariants.
	corrupt := ledger.TransactionHeader + "\n" +
		"txn-1,2025-01-03,GITHUB,-4.00,USD,,matched,,,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.csv"), []byte(corrupt), 0o644))

	_, _, err := NewFileStore(root).Load(context.Background())
	assert.Error(t, err)
}

func TestFileStore_SaveEmptyBook(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	ws, err := ledger.FromRecords(nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), ws, nil))

	loaded, pending, err := NewFileStore(root).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded.Transactions())
	assert.Nil(t, pending)
}
