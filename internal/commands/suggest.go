package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matchbook-dev/matchbook/internal/model"
	"github.com/matchbook-dev/matchbook/internal/suggest"
)

func newSuggestCommand() *cobra.Command {
	var (
		skipDeterministic bool
		timeoutSeconds    int
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Request fuzzy match suggestions for the unmatched residue",
		Long: `Suggest runs the deterministic pass first, then sends what remains
unmatched to the configured model for fuzzy candidates. Suggestions are
never applied automatically: review them with accept or dismiss. Finding
nothing further is a normal outcome, not an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}

			if !skipDeterministic {
				if n := runDeterministic(s, matchConfig(s.cfg, 0)); n > 0 {
					fmt.Printf("%d deterministic matches\n", n)
				}
			}

			modelName := s.cfg.Suggestions.Model
			if modelName == "" {
				modelName = suggest.DefaultModel
			}
			floor := s.cfg.Suggestions.MinConfidence
			if floor <= 0 {
				floor = suggest.DefaultConfidenceFloor
			}
			timeout := time.Duration(timeoutSeconds) * time.Second
			if timeoutSeconds <= 0 {
				timeout = time.Duration(s.cfg.Suggestions.TimeoutSeconds) * time.Second
			}
			if timeout <= 0 {
				timeout = 30 * time.Second
			}

			orch := suggest.NewOrchestrator(suggest.NewGeminiProvider(modelName, floor))
			orch.Restore(s.pending)

			reqCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
			_, reqErr := orch.Request(reqCtx, s.ws)
			cancel()

			// Deterministic links still have to reach the store even when
			// the provider call failed.
			s.pending = orch.Pending()
			s.touch()

			if reqErr == nil {
				printSuggestions(s.pending)
			}

			finErr := s.finish(cmd.Context(), fmt.Sprintf("suggest: %d pending suggestions", len(s.pending)))
			if reqErr != nil {
				return reqErr
			}
			return finErr
		},
	}

	cmd.Flags().BoolVar(&skipDeterministic, "skip-deterministic", false, "skip the deterministic pass")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "provider timeout in seconds (default from config)")

	return cmd
}

func printSuggestions(pending []model.MatchSuggestion) {
	if len(pending) == 0 {
		fmt.Println("no further matches found")
		return
	}

	fmt.Printf("%d suggestions pending review\n", len(pending))
	fmt.Printf("%-14s %-14s %5s  %s\n", "TRANSACTION", "RECEIPT", "CONF", "RATIONALE")
	for _, sg := range pending {
		fmt.Printf("%-14s %-14s %5.2f  %s\n", sg.TransactionID, sg.ReceiptID, sg.Confidence, sg.Rationale)
	}
	fmt.Println("\nreview with: matchbook accept <transaction-id> <receipt-id>")
}
