package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantPrefix string
	}{
		{"gs://my-bucket", "my-bucket", ""},
		{"gs://my-bucket/books/2025", "my-bucket", "books/2025"},
		{"gs://my-bucket/books/2025/", "my-bucket", "books/2025"},
	}
	for _, tt := range tests {
		bucket, prefix, err := ParseGCSURI(tt.uri)
		require.NoError(t, err, "uri: %s", tt.uri)
		assert.Equal(t, tt.wantBucket, bucket)
		assert.Equal(t, tt.wantPrefix, prefix)
	}
}

func TestParseGCSURI_Errors(t *testing.T) {
	badURIs := []string{
		"",
		"my-bucket/books",
		"s3://my-bucket/books",
		"gs://",
	}
	for _, uri := range badURIs {
		_, _, err := ParseGCSURI(uri)
		assert.Error(t, err, "expected error for uri: %s", uri)
	}
}

func TestGCSStore_ObjectPath(t *testing.T) {
	s := &GCSStore{Bucket: "my-bucket"}
	assert.Equal(t, "transactions.csv", s.object("transactions.csv"))

	s.Prefix = "books/2025"
	assert.Equal(t, "books/2025/transactions.csv", s.object("transactions.csv"))
}
