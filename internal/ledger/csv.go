package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matchbook-dev/matchbook/internal/model"
)

// TransactionHeader is the CSV header for transactions.csv.
const TransactionHeader = "id,date,description,amount,currency,reference,state,receipt_id,origin,rationale"

// ReceiptHeader is the CSV header for receipts.csv.
const ReceiptHeader = "id,vendor,date,amount,currency,category,document_ref"

// SuggestionHeader is the CSV header for suggestions.csv.
const SuggestionHeader = "transaction_id,receipt_id,confidence,rationale,requested_at"

const dateFormat = "2006-01-02"

const (
	txNumFields  = 10
	txColID      = 0
	txColDate    = 1
	txColDesc    = 2
	txColAmount  = 3
	txColCcy     = 4
	txColRef     = 5
	txColState   = 6
	txColReceipt = 7
	txColOrigin  = 8
	txColWhy     = 9
)

const (
	rcNumFields = 7
	rcColID     = 0
	rcColVendor = 1
	rcColDate   = 2
	rcColAmount = 3
	rcColCcy    = 4
	rcColCat    = 5
	rcColDoc    = 6
)

const (
	sgNumFields = 5
	sgColTx     = 0
	sgColRcpt   = 1
	sgColConf   = 2
	sgColWhy    = 3
	sgColAt     = 4
)

// ReadTransactions reads all transactions from a transactions.csv reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = txNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var txs []model.Transaction
	for i, rec := range records[1:] {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// WriteTransactions writes transactions to a transactions.csv writer
// (including header).
func WriteTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(TransactionHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txs {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, txNumFields)
	row[txColID] = t.ID
	row[txColDate] = t.Date.Format(dateFormat)
	row[txColDesc] = t.Description
	row[txColAmount] = t.Amount.Amount.StringFixed(2)
	row[txColCcy] = t.Amount.Currency
	row[txColRef] = t.Reference
	row[txColState] = string(t.State)
	row[txColReceipt] = t.ReceiptID
	row[txColOrigin] = string(t.Origin)
	row[txColWhy] = t.Rationale
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != txNumFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", txNumFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[txColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[txColDate], err)
	}

	amount, err := decimal.NewFromString(record[txColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[txColAmount], err)
	}

	state := model.MatchState(record[txColState])
	if state == "" {
		state = model.StateUnmatched
	}

	return model.Transaction{
		ID:          record[txColID],
		Date:        date,
		Description: record[txColDesc],
		Amount:      model.Money{Amount: amount, Currency: record[txColCcy]},
		Reference:   record[txColRef],
		State:       state,
		ReceiptID:   record[txColReceipt],
		Origin:      model.MatchOrigin(record[txColOrigin]),
		Rationale:   record[txColWhy],
	}, nil
}

// ReadReceipts reads all receipts from a receipts.csv reader.
func ReadReceipts(r io.Reader) ([]model.Receipt, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = rcNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading receipts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var receipts []model.Receipt
	for i, rec := range records[1:] {
		rcpt, err := UnmarshalReceipt(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		receipts = append(receipts, rcpt)
	}
	return receipts, nil
}

// WriteReceipts writes receipts to a receipts.csv writer (including header).
func WriteReceipts(w io.Writer, receipts []model.Receipt) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(ReceiptHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rcpt := range receipts {
		if err := cw.Write(MarshalReceipt(rcpt)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalReceipt converts a Receipt to a CSV row.
func MarshalReceipt(r model.Receipt) []string {
	row := make([]string, rcNumFields)
	row[rcColID] = r.ID
	row[rcColVendor] = r.Vendor
	row[rcColDate] = r.Date.Format(dateFormat)
	row[rcColAmount] = r.Amount.Amount.StringFixed(2)
	row[rcColCcy] = r.Amount.Currency
	row[rcColCat] = r.Category
	row[rcColDoc] = r.DocumentRef
	return row
}

// UnmarshalReceipt converts a CSV row to a Receipt.
func UnmarshalReceipt(record []string) (model.Receipt, error) {
	if len(record) != rcNumFields {
		return model.Receipt{}, fmt.Errorf("expected %d fields, got %d", rcNumFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[rcColDate])
	if err != nil {
		return model.Receipt{}, fmt.Errorf("parsing date %q: %w", record[rcColDate], err)
	}

	amount, err := decimal.NewFromString(record[rcColAmount])
	if err != nil {
		return model.Receipt{}, fmt.Errorf("parsing amount %q: %w", record[rcColAmount], err)
	}

	return model.Receipt{
		ID:          record[rcColID],
		Vendor:      record[rcColVendor],
		Date:        date,
		Amount:      model.Money{Amount: amount, Currency: record[rcColCcy]},
		Category:    record[rcColCat],
		DocumentRef: record[rcColDoc],
	}, nil
}

// ReadSuggestions reads all pending suggestions from a suggestions.csv reader.
func ReadSuggestions(r io.Reader) ([]model.MatchSuggestion, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = sgNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading suggestions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var suggestions []model.MatchSuggestion
	for i, rec := range records[1:] {
		s, err := UnmarshalSuggestion(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

// WriteSuggestions writes pending suggestions to a suggestions.csv writer
// (including header).
func WriteSuggestions(w io.Writer, suggestions []model.MatchSuggestion) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(SuggestionHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, s := range suggestions {
		if err := cw.Write(MarshalSuggestion(s)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalSuggestion converts a MatchSuggestion to a CSV row.
func MarshalSuggestion(s model.MatchSuggestion) []string {
	row := make([]string, sgNumFields)
	row[sgColTx] = s.TransactionID
	row[sgColRcpt] = s.ReceiptID
	row[sgColConf] = strconv.FormatFloat(s.Confidence, 'f', -1, 64)
	row[sgColWhy] = s.Rationale
	row[sgColAt] = s.RequestedAt.UTC().Format(time.RFC3339)
	return row
}

// UnmarshalSuggestion converts a CSV row to a MatchSuggestion.
func UnmarshalSuggestion(record []string) (model.MatchSuggestion, error) {
	if len(record) != sgNumFields {
		return model.MatchSuggestion{}, fmt.Errorf("expected %d fields, got %d", sgNumFields, len(record))
	}

	confidence, err := strconv.ParseFloat(record[sgColConf], 64)
	if err != nil {
		return model.MatchSuggestion{}, fmt.Errorf("parsing confidence %q: %w", record[sgColConf], err)
	}

	requestedAt, err := time.Parse(time.RFC3339, record[sgColAt])
	if err != nil {
		return model.MatchSuggestion{}, fmt.Errorf("parsing requested_at %q: %w", record[sgColAt], err)
	}

	return model.MatchSuggestion{
		TransactionID: record[sgColTx],
		ReceiptID:     record[sgColRcpt],
		Confidence:    confidence,
		Rationale:     record[sgColWhy],
		RequestedAt:   requestedAt,
	}, nil
}
