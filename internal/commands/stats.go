package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matchbook-dev/matchbook/internal/currency"
	"github.com/matchbook-dev/matchbook/internal/stats"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show reconciliation coverage for the book",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}
			defer s.close()

			table := currency.NewTable(s.cfg.Ledger.ReportingCurrency, s.cfg.Ledger.Rates)
			rep := stats.Compute(s.ws, table)

			fmt.Printf("Book: %s\n", s.cfg.Book.Name)
			fmt.Printf("Transactions: %d (%d matched, %d unmatched, %d ignored)\n",
				rep.Transactions, rep.Matched, rep.Unmatched, rep.Ignored)
			fmt.Printf("Receipts: %d (%d unmatched)\n", rep.Receipts, rep.UnmatchedReceipts)
			fmt.Printf("Matches by origin: %d deterministic, %d suggested, %d manual\n",
				rep.Deterministic, rep.Suggested, rep.Manual)
			fmt.Printf("Pending suggestions: %d\n", len(s.pending))
			fmt.Printf("Count coverage: %.1f%%\n", rep.CountCoverage*100)
			fmt.Printf("Value coverage: %.1f%% (%s of %s %s)\n",
				rep.ValueCoverage*100,
				rep.MatchedExpenseValue.StringFixed(2),
				rep.TotalExpenseValue.StringFixed(2),
				rep.ReportingCurrency)
			return nil
		},
	}
}
