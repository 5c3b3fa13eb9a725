package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/matchbook-dev/matchbook/internal/id"
	"github.com/matchbook-dev/matchbook/internal/model"
)

// XLSXParser parses generic statement workbooks. The first sheet must
// have a header row with Date, Description and Amount columns; Currency
// and Reference columns are optional.
type XLSXParser struct{}

// xlsxDateLayouts covers ISO dates plus the formats excelize renders
// date-formatted cells with.
var xlsxDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/06",
	"01-02-06",
}

// xlsxDefaultCurrency applies when the workbook has no Currency column.
const xlsxDefaultCurrency = "USD"

// Format returns the parser name.
func (p *XLSXParser) Format() string { return "xlsx" }

// Parse reads a statement workbook and returns Transactions in the
// unmatched state.
func (p *XLSXParser) Parse(r io.Reader) ([]model.Transaction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	cols, err := mapXLSXHeader(rows[0])
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], err)
	}

	var txns []model.Transaction
	for i, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}
		txn, err := parseXLSXRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// xlsxColumns maps header names to column indexes. -1 means absent.
type xlsxColumns struct {
	date      int
	desc      int
	amount    int
	currency  int
	reference int
}

func mapXLSXHeader(header []string) (xlsxColumns, error) {
	cols := xlsxColumns{date: -1, desc: -1, amount: -1, currency: -1, reference: -1}
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "date":
			cols.date = i
		case "description":
			cols.desc = i
		case "amount":
			cols.amount = i
		case "currency":
			cols.currency = i
		case "reference":
			cols.reference = i
		}
	}
	if cols.date < 0 || cols.desc < 0 || cols.amount < 0 {
		return cols, fmt.Errorf("header must include Date, Description and Amount columns")
	}
	return cols, nil
}

func parseXLSXRow(row []string, cols xlsxColumns) (model.Transaction, error) {
	date, err := parseXLSXDate(cell(row, cols.date))
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := parseXLSXAmount(cell(row, cols.amount))
	if err != nil {
		return model.Transaction{}, err
	}

	desc := cell(row, cols.desc)

	currency := strings.ToUpper(cell(row, cols.currency))
	if currency == "" {
		currency = xlsxDefaultCurrency
	}

	ref := cell(row, cols.reference)
	if ref == "" {
		ref = statementRef("xlsx", date, desc)
	}

	return model.Transaction{
		ID:          id.NewTransactionID(),
		Date:        date,
		Description: desc,
		Amount:      model.Money{Amount: amount, Currency: currency},
		Reference:   ref,
		State:       model.StateUnmatched,
	}, nil
}

func parseXLSXDate(s string) (time.Time, error) {
	for _, layout := range xlsxDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: unrecognized format", s)
}

// parseXLSXAmount strips the currency formatting spreadsheets apply to
// amount cells before parsing.
func parseXLSXAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(s)
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return amount, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
