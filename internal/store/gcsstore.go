package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/model"
)

// GCSStore mirrors the book's CSV layout into a Google Cloud Storage
// bucket, one object per file under an optional prefix. It exists for
// books shared between machines; FileStore remains the default. Auth
// comes from Application Default Credentials.
type GCSStore struct {
	Bucket string
	Prefix string

	client *storage.Client
}

// NewGCSStore creates a store backed by the given bucket and prefix.
func NewGCSStore(ctx context.Context, bucket, prefix string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCSStore{Bucket: bucket, Prefix: prefix, client: client}, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// ParseGCSURI splits "gs://bucket/prefix" into bucket and prefix. The
// prefix may be empty.
func ParseGCSURI(uri string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no bucket): %s", uri)
	}
	bucket = parts[0]
	if len(parts) == 2 {
		prefix = strings.Trim(parts[1], "/")
	}
	return bucket, prefix, nil
}

// Load reads and validates the book from the bucket. Missing objects
// read as empty.
func (s *GCSStore) Load(ctx context.Context) (*ledger.WorkingSet, []model.MatchSuggestion, error) {
	txData, err := s.read(ctx, transactionsFile)
	if err != nil {
		return nil, nil, err
	}
	txs, err := ledger.ReadTransactions(bytes.NewReader(txData))
	if err != nil {
		return nil, nil, err
	}

	rcData, err := s.read(ctx, receiptsFile)
	if err != nil {
		return nil, nil, err
	}
	receipts, err := ledger.ReadReceipts(bytes.NewReader(rcData))
	if err != nil {
		return nil, nil, err
	}

	sgData, err := s.read(ctx, suggestionsFile)
	if err != nil {
		return nil, nil, err
	}
	suggestions, err := ledger.ReadSuggestions(bytes.NewReader(sgData))
	if err != nil {
		return nil, nil, err
	}

	ws, err := ledger.FromRecords(txs, receipts)
	if err != nil {
		return nil, nil, err
	}
	return ws, suggestions, nil
}

// Save writes the book to the bucket.
func (s *GCSStore) Save(ctx context.Context, ws *ledger.WorkingSet, pending []model.MatchSuggestion) error {
	snap, err := marshalSnapshot(ws.TransactionRecords(), ws.ReceiptRecords(), pending)
	if err != nil {
		return err
	}

	if err := s.write(ctx, transactionsFile, snap.transactions); err != nil {
		return err
	}
	if err := s.write(ctx, receiptsFile, snap.receipts); err != nil {
		return err
	}
	return s.write(ctx, suggestionsFile, snap.suggestions)
}

func (s *GCSStore) object(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(s.Prefix, name)
}

func (s *GCSStore) read(ctx context.Context, name string) ([]byte, error) {
	rc, err := s.client.Bucket(s.Bucket).Object(s.object(name)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading gs://%s/%s: %w", s.Bucket, s.object(name), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading gs://%s/%s: %w", s.Bucket, s.object(name), err)
	}
	return data, nil
}

func (s *GCSStore) write(ctx context.Context, name string, data []byte) error {
	w := s.client.Bucket(s.Bucket).Object(s.object(name)).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("writing gs://%s/%s: %w", s.Bucket, s.object(name), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing gs://%s/%s: %w", s.Bucket, s.object(name), err)
	}
	return nil
}
