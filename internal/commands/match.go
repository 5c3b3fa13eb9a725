package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/matchbook-dev/matchbook/internal/auditlog"
	"github.com/matchbook-dev/matchbook/internal/config"
	"github.com/matchbook-dev/matchbook/internal/matcher"
)

func newMatchCommand() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Run the deterministic matching pass",
		Long: `Match links unmatched transactions to receipts that agree on currency,
amount, and date. The pass is greedy: each transaction takes the first
receipt that qualifies, and re-running it with unchanged inputs links
nothing further. A run with zero matches is a normal outcome.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}

			cfg := matchConfig(s.cfg, window)
			n := runDeterministic(s, cfg)
			fmt.Printf("%d new matches\n", n)

			return s.finish(cmd.Context(), fmt.Sprintf("match: %d deterministic matches", n))
		},
	}

	cmd.Flags().IntVar(&window, "window", 0, "date window in days (default from config)")

	return cmd
}

// matchConfig layers the config file over the built-in defaults, and a
// --window override over both.
func matchConfig(cfg *config.Config, windowOverride int) matcher.Config {
	mc := matcher.DefaultConfig()
	if cfg.Matching.WindowDays > 0 {
		mc.WindowDays = cfg.Matching.WindowDays
	}
	if cfg.Matching.AmountTolerance > 0 {
		mc.AmountTolerance = decimal.NewFromFloat(cfg.Matching.AmountTolerance)
	}
	if windowOverride > 0 {
		mc.WindowDays = windowOverride
	}
	return mc
}

// runDeterministic runs one matching pass and queues a match-log entry per
// link it created. Shared by match and suggest.
func runDeterministic(s *session, cfg matcher.Config) int {
	before := make(map[string]bool)
	for _, t := range s.ws.Transactions() {
		if t.IsMatched() {
			before[t.ID] = true
		}
	}

	n := matcher.Run(s.ws, cfg)
	if n == 0 {
		return 0
	}

	s.touch()
	for _, t := range s.ws.Transactions() {
		if t.IsMatched() && !before[t.ID] {
			s.record(auditlog.ActionLink, t.ID, t.ReceiptID, t.Origin, t.Rationale)
		}
	}
	return n
}
