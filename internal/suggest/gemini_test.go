package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	prompt, err := buildPrompt(
		[]TransactionSummary{{ID: "txn-1", Date: "2024-05-01", Description: "SQ *CORNER CAFE", Amount: "-18.50"}},
		[]ReceiptSummary{{ID: "rcpt-1", Date: "2024-05-01", Vendor: "Corner Cafe", Amount: "16.00"}},
	)
	require.NoError(t, err)

	assert.Contains(t, prompt, `"txn-1"`)
	assert.Contains(t, prompt, `"rcpt-1"`)
	assert.Contains(t, prompt, "SQ *CORNER CAFE")
	assert.Contains(t, prompt, "-18.50")
	assert.Contains(t, prompt, "STRICT JSON")
	assert.NotContains(t, prompt, "currency", "the projection deliberately omits currency")
}

func TestDecodeSuggestions(t *testing.T) {
	raw := `[
		{"transaction_id": "txn-1", "receipt_id": "rcpt-1", "confidence": 0.82, "rationale": "same vendor and day"},
		{"transaction_id": "txn-2", "receipt_id": "rcpt-2", "confidence": 0.55, "rationale": "weak amount match"}
	]`

	got, err := decodeSuggestions(raw, 0.7)
	require.NoError(t, err)
	require.Len(t, got, 1, "rows under the confidence floor are dropped")
	assert.Equal(t, "txn-1", got[0].TransactionID)
	assert.Equal(t, "rcpt-1", got[0].ReceiptID)
	assert.Equal(t, 0.82, got[0].Confidence)
	assert.Equal(t, "same vendor and day", got[0].Rationale)
}

func TestDecodeSuggestionsFenced(t *testing.T) {
	raw := "```json\n[{\"transaction_id\": \"txn-1\", \"receipt_id\": \"rcpt-1\", \"confidence\": 0.9, \"rationale\": \"x\"}]\n```"

	got, err := decodeSuggestions(raw, 0.7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "txn-1", got[0].TransactionID)
}

func TestDecodeSuggestionsEmptyArray(t *testing.T) {
	got, err := decodeSuggestions("[]", 0.7)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeSuggestionsBadJSON(t *testing.T) {
	_, err := decodeSuggestions("I could not find any matches.", 0.7)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unmarshal JSON")
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `[{"a":1}]`, `[{"a":1}]`},
		{"fenced", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"fenced bare", "```\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"leading whitespace", "  \n[{\"a\":1}]\n", `[{"a":1}]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanModelJSON(tt.raw), tt.name)
	}
}

func TestNewGeminiProviderDefaults(t *testing.T) {
	p := NewGeminiProvider("", 0)
	assert.Equal(t, DefaultModel, p.Model)
	assert.Equal(t, DefaultConfidenceFloor, p.ConfidenceFloor)

	p = NewGeminiProvider("gemini-2.5-pro", 0.8)
	assert.Equal(t, "gemini-2.5-pro", p.Model)
	assert.Equal(t, 0.8, p.ConfidenceFloor)
}
