package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/matchbook-dev/matchbook/internal/model"
)

// DefaultModel is the Gemini model used for fuzzy matching.
const DefaultModel = "gemini-2.5-flash"

// DefaultConfidenceFloor drops pairs the model is not confident about
// before they ever reach review.
const DefaultConfidenceFloor = 0.7

// GeminiProvider implements Provider against Google's Gemini API. The
// client picks up credentials from the environment (GEMINI_API_KEY or
// application default credentials).
type GeminiProvider struct {
	Model           string
	ConfidenceFloor float64
}

// NewGeminiProvider creates a provider, falling back to the default model
// and confidence floor for zero values.
func NewGeminiProvider(modelName string, floor float64) *GeminiProvider {
	if modelName == "" {
		modelName = DefaultModel
	}
	if floor <= 0 {
		floor = DefaultConfidenceFloor
	}
	return &GeminiProvider{Model: modelName, ConfidenceFloor: floor}
}

// Suggest asks the model for likely transaction/receipt pairs. It expects a
// STRICT JSON array back and applies the confidence floor before returning.
func (p *GeminiProvider) Suggest(ctx context.Context, txs []TransactionSummary, receipts []ReceiptSummary) ([]model.MatchSuggestion, error) {
	prompt, err := buildPrompt(txs, receipts)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, p.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	return decodeSuggestions(rawText, p.ConfidenceFloor)
}

func buildPrompt(txs []TransactionSummary, receipts []ReceiptSummary) (string, error) {
	txJSON, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling transactions: %w", err)
	}
	rcptJSON, err := json.MarshalIndent(receipts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling receipts: %w", err)
	}

	prompt :=
		"You are a bookkeeping assistant matching bank transactions to expense receipts.\n\n" +
			"Task:\n" +
			"- Compare the transactions and receipts below.\n" +
			"- Propose pairs that likely describe the same purchase, using vendor names,\n" +
			"  dates, and amounts. Descriptions are bank-mangled; receipts may be dated a\n" +
			"  few days before the transaction posts and amounts may differ by tip or fees.\n" +
			"- Propose each transaction and each receipt at most once.\n" +
			"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
			"- Output a JSON array of objects.\n\n" +
			"Each object must have these fields:\n" +
			"- \"transaction_id\": string, an id from the transactions list\n" +
			"- \"receipt_id\": string, an id from the receipts list\n" +
			"- \"confidence\": number between 0 and 1\n" +
			"- \"rationale\": string, one short sentence naming the evidence\n\n" +
			"Transactions:\n" + string(txJSON) + "\n\n" +
			"Receipts:\n" + string(rcptJSON) + "\n\n" +
			"Rules:\n" +
			"- Only include pairs you are reasonably confident about.\n" +
			"- If nothing matches, return [].\n" +
			"- Return ONLY valid raw JSON.\n" +
			"- Do NOT wrap the response in code fences.\n" +
			"- Do NOT use ```json or any Markdown.\n" +
			"Output must begin with \"[\" and end with \"]\".\n"

	return prompt, nil
}

type suggestionRow struct {
	TransactionID string  `json:"transaction_id"`
	ReceiptID     string  `json:"receipt_id"`
	Confidence    float64 `json:"confidence"`
	Rationale     string  `json:"rationale"`
}

// decodeSuggestions parses the model output, tolerating Markdown fences the
// model was told not to emit, and drops rows below the confidence floor.
func decodeSuggestions(raw string, floor float64) ([]model.MatchSuggestion, error) {
	clean := cleanModelJSON(raw)

	var rows []suggestionRow
	if err := json.Unmarshal([]byte(clean), &rows); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w\nraw response: %s", err, raw)
	}

	var out []model.MatchSuggestion
	for _, row := range rows {
		if row.Confidence < floor {
			continue
		}
		out = append(out, model.MatchSuggestion{
			TransactionID: row.TransactionID,
			ReceiptID:     row.ReceiptID,
			Confidence:    row.Confidence,
			Rationale:     row.Rationale,
		})
	}
	return out, nil
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
