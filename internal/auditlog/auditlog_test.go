package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchbook-dev/matchbook/internal/model"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:     testTime,
		Action:        ActionLink,
		TransactionID: "txn-3f8a91c2",
		ReceiptID:     "rcpt-9d04e7ba",
		Origin:        model.OriginManual,
		Rationale:     "manually linked by operator",
		CommitHash:    "abc1234",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	err := Append(dir, []Entry{testEntry()})
	require.NoError(t, err)

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, ActionLink, entries[0].Action)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Action = ActionUnlink
	e2.Origin = ""
	e2.Rationale = ""
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, ActionLink, entries[0].Action)
	assert.Equal(t, ActionUnlink, entries[1].Action)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, original.Action, got.Action)
	assert.Equal(t, original.TransactionID, got.TransactionID)
	assert.Equal(t, original.ReceiptID, got.ReceiptID)
	assert.Equal(t, original.Origin, got.Origin)
	assert.Equal(t, original.Rationale, got.Rationale)
	assert.Equal(t, original.CommitHash, got.CommitHash)
}

func TestRead_NotFound(t *testing.T) {
	dir := t.TempDir()
	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "match-log.csv"), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestMarshalUnmarshal(t *testing.T) {
	e := testEntry()
	row := MarshalEntry(e)
	assert.Len(t, row, 7)

	got, err := UnmarshalEntry(row)
	require.NoError(t, err)
	assert.True(t, e.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, e.Action, got.Action)
	assert.Equal(t, e.TransactionID, got.TransactionID)
	assert.Equal(t, e.ReceiptID, got.ReceiptID)
	assert.Equal(t, e.Origin, got.Origin)
	assert.Equal(t, e.Rationale, got.Rationale)
	assert.Equal(t, e.CommitHash, got.CommitHash)
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 7 fields")
}

func TestTimestampFormat(t *testing.T) {
	e := testEntry()
	row := MarshalEntry(e)
	assert.Equal(t, "2025-01-15T10:30:00Z", row[0])
}

func TestAppend_CreatesDir(t *testing.T) {
	dir := t.TempDir()
	// logs/ dir does not exist yet
	err := Append(dir, []Entry{testEntry()})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
