// Spike 1: fuzzy matching bank rows to receipts via Gemini.
//
// Proves out the suggestion loop before wiring it into the CLI: build a
// prompt from mangled bank descriptions plus clean receipt fields, ask for
// strict JSON back, decode, print. Needs GEMINI_API_KEY in the environment.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"
)

type txRow struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type rcptRow struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Vendor string `json:"vendor"`
	Amount string `json:"amount"`
}

type pair struct {
	TransactionID string  `json:"transaction_id"`
	ReceiptID     string  `json:"receipt_id"`
	Confidence    float64 `json:"confidence"`
	Rationale     string  `json:"rationale"`
}

// Sample data shaped like real statement exports: bank descriptions are
// truncated and upper-cased, receipt dates trail posting dates, and the
// coffee amount includes a tip the receipt lacks.
var txns = []txRow{
	{"t1", "2025-01-03", "SQ *BLUE BOTTLE COF", "-12.75"},
	{"t2", "2025-01-07", "AMZN MKTP US*2K4XY1", "-38.12"},
	{"t3", "2025-01-09", "DELTA AIR 0062341776418", "-412.30"},
	{"t4", "2025-01-15", "PAYROLL ACME CORP", "3500.00"},
}

var rcpts = []rcptRow{
	{"r1", "2025-01-03", "Blue Bottle Coffee", "10.75"},
	{"r2", "2025-01-06", "Amazon", "38.12"},
	{"r3", "2025-01-08", "Delta Air Lines", "412.30"},
}

func main() {
	txJSON, _ := json.MarshalIndent(txns, "", "  ")
	rcptJSON, _ := json.MarshalIndent(rcpts, "", "  ")

	prompt := "You are a bookkeeping assistant matching bank transactions to expense receipts.\n" +
		"Propose pairs that likely describe the same purchase. Bank descriptions are\n" +
		"mangled; receipts may predate posting by a few days; amounts may differ by a\n" +
		"tip. Use each id at most once. Return ONLY a JSON array of objects with\n" +
		"fields transaction_id, receipt_id, confidence (0..1), rationale. If nothing\n" +
		"matches return []. No code fences.\n\n" +
		"Transactions:\n" + string(txJSON) + "\n\nReceipts:\n" + string(rcptJSON) + "\n"

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "client: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, "gemini-2.5-flash", []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("round trip: %v\n", time.Since(start))

	raw := strings.TrimSpace(resp.Text())
	fmt.Printf("raw response:\n%s\n\n", raw)

	// Models wrap output in fences no matter how firmly told not to.
	if strings.HasPrefix(raw, "```") {
		if idx := strings.Index(raw, "\n"); idx != -1 {
			raw = raw[idx+1:]
		}
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
	}

	var pairs []pair
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%d pairs:\n", len(pairs))
	for _, p := range pairs {
		fmt.Printf("  %s -> %s  %.2f  %s\n", p.TransactionID, p.ReceiptID, p.Confidence, p.Rationale)
	}

	// Expect t1-r1 (tip delta), t2-r2, t3-r3, and nothing for the payroll row.
}
