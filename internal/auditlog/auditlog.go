// Package auditlog records every match decision in an append-only CSV,
// so the history of who linked what survives unlink and delete.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matchbook-dev/matchbook/internal/model"
)

// Entry is one row in the match log.
type Entry struct {
	Timestamp     time.Time
	Action        string
	TransactionID string
	ReceiptID     string
	Origin        model.MatchOrigin
	Rationale     string
	CommitHash    string
}

// Actions recorded in the match log.
const (
	ActionImport  = "import"
	ActionLink    = "link"
	ActionUnlink  = "unlink"
	ActionIgnore  = "ignore"
	ActionRestore = "restore"
	ActionDismiss = "dismiss"
)

// Header is the CSV header for match-log.csv.
const Header = "timestamp,action,transaction_id,receipt_id,origin,rationale,commit_hash"

const (
	numFields     = 7
	logDir        = "logs"
	logFile       = "logs/match-log.csv"
	colTimestamp  = 0
	colAction     = 1
	colTx         = 2
	colReceipt    = 3
	colOrigin     = 4
	colRationale  = 5
	colCommitHash = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colAction] = e.Action
	row[colTx] = e.TransactionID
	row[colReceipt] = e.ReceiptID
	row[colOrigin] = string(e.Origin)
	row[colRationale] = e.Rationale
	row[colCommitHash] = e.CommitHash
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp:     ts,
		Action:        record[colAction],
		TransactionID: record[colTx],
		ReceiptID:     record[colReceipt],
		Origin:        model.MatchOrigin(record[colOrigin]),
		Rationale:     record[colRationale],
		CommitHash:    record[colCommitHash],
	}, nil
}

// Append writes entries to <bookRoot>/logs/match-log.csv, creating the
// file and header if needed.
func Append(bookRoot string, entries []Entry) error {
	dir := filepath.Join(bookRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(bookRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening match log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <bookRoot>/logs/match-log.csv.
// Returns nil if the file does not exist.
func Read(bookRoot string) ([]Entry, error) {
	path := filepath.Join(bookRoot, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening match log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading match log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
