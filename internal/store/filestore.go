package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/model"
)

const (
	ledgerDir        = "ledger"
	transactionsFile = "transactions.csv"
	receiptsFile     = "receipts.csv"
	suggestionsFile  = "suggestions.csv"
)

// FileStore keeps the book as CSV files under <Root>/ledger/. Missing
// files read as empty, so a freshly initialized book loads cleanly.
type FileStore struct {
	Root string

	// MaxBytes caps the combined snapshot size. Zero means no budget.
	MaxBytes int64
}

// NewFileStore returns a FileStore rooted at the book directory.
func NewFileStore(root string) *FileStore {
	return &FileStore{Root: root}
}

// Load reads and validates the persisted book.
func (s *FileStore) Load(ctx context.Context) (*ledger.WorkingSet, []model.MatchSuggestion, error) {
	txs, err := s.loadTransactions()
	if err != nil {
		return nil, nil, err
	}

	receipts, err := s.loadReceipts()
	if err != nil {
		return nil, nil, err
	}

	suggestions, err := s.loadSuggestions()
	if err != nil {
		return nil, nil, err
	}

	ws, err := ledger.FromRecords(txs, receipts)
	if err != nil {
		return nil, nil, err
	}
	return ws, suggestions, nil
}

func (s *FileStore) loadTransactions() ([]model.Transaction, error) {
	f, err := os.Open(filepath.Join(s.Root, ledgerDir, transactionsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening transactions file: %w", err)
	}
	defer f.Close()
	return ledger.ReadTransactions(f)
}

func (s *FileStore) loadReceipts() ([]model.Receipt, error) {
	f, err := os.Open(filepath.Join(s.Root, ledgerDir, receiptsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening receipts file: %w", err)
	}
	defer f.Close()
	return ledger.ReadReceipts(f)
}

func (s *FileStore) loadSuggestions() ([]model.MatchSuggestion, error) {
	f, err := os.Open(filepath.Join(s.Root, ledgerDir, suggestionsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening suggestions file: %w", err)
	}
	defer f.Close()
	return ledger.ReadSuggestions(f)
}

// Save writes the book back to disk. When a byte budget is set and the
// snapshot exceeds it, receipt document references are shed from the
// persisted form (never from the working set) and Save returns a
// QuotaError describing what was dropped; the write itself still happens.
func (s *FileStore) Save(ctx context.Context, ws *ledger.WorkingSet, pending []model.MatchSuggestion) error {
	txs := ws.TransactionRecords()
	receipts := ws.ReceiptRecords()

	snap, err := marshalSnapshot(txs, receipts, pending)
	if err != nil {
		return err
	}

	var quota error
	if s.MaxBytes > 0 && snap.size() > s.MaxBytes {
		shed := shedDocumentRefs(receipts)
		if shed > 0 {
			snap, err = marshalSnapshot(txs, receipts, pending)
			if err != nil {
				return err
			}
		}
		quota = QuotaError{Limit: s.MaxBytes, Size: snap.size(), Shed: shed}
	}

	dir := filepath.Join(s.Root, ledgerDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, transactionsFile), snap.transactions, 0o644); err != nil {
		return fmt.Errorf("writing transactions: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, receiptsFile), snap.receipts, 0o644); err != nil {
		return fmt.Errorf("writing receipts: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, suggestionsFile), snap.suggestions, 0o644); err != nil {
		return fmt.Errorf("writing suggestions: %w", err)
	}
	return quota
}

// snapshot holds the marshaled form of the three book files.
type snapshot struct {
	transactions []byte
	receipts     []byte
	suggestions  []byte
}

func (p snapshot) size() int64 {
	return int64(len(p.transactions) + len(p.receipts) + len(p.suggestions))
}

func marshalSnapshot(txs []model.Transaction, receipts []model.Receipt, pending []model.MatchSuggestion) (snapshot, error) {
	var txBuf, rcBuf, sgBuf bytes.Buffer

	if err := ledger.WriteTransactions(&txBuf, txs); err != nil {
		return snapshot{}, fmt.Errorf("marshaling transactions: %w", err)
	}
	if err := ledger.WriteReceipts(&rcBuf, receipts); err != nil {
		return snapshot{}, fmt.Errorf("marshaling receipts: %w", err)
	}
	if err := ledger.WriteSuggestions(&sgBuf, pending); err != nil {
		return snapshot{}, fmt.Errorf("marshaling suggestions: %w", err)
	}

	return snapshot{
		transactions: txBuf.Bytes(),
		receipts:     rcBuf.Bytes(),
		suggestions:  sgBuf.Bytes(),
	}, nil
}

// shedDocumentRefs clears the DocumentRef field on the persisted receipt
// copies and reports how many were non-empty. Match state lives on
// transactions, so shedding references can never orphan a link.
func shedDocumentRefs(receipts []model.Receipt) int {
	shed := 0
	for i := range receipts {
		if receipts[i].DocumentRef != "" {
			receipts[i].DocumentRef = ""
			shed++
		}
	}
	return shed
}
