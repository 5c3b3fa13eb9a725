package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matchbook-dev/matchbook/internal/auditlog"
	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/suggest"
)

func newAcceptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <transaction-id> <receipt-id>",
		Short: "Accept a pending suggestion, linking the pair",
		Long: `Accept re-validates the suggestion against the book as it is now, not
as it was when suggested. If either side was matched, ignored, or
removed in the meantime, the stale suggestion is dropped and nothing
else changes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}

			txID, receiptID := args[0], args[1]
			orch := suggest.NewOrchestrator(nil)
			orch.Restore(s.pending)

			acceptErr := orch.Accept(s.ws, txID, receiptID)

			var input ledger.InputError
			if errors.As(acceptErr, &input) {
				s.close()
				return acceptErr
			}

			// Success links the pair; a conflict drops the stale
			// suggestion. Either way the pending set changed and has to
			// reach the store.
			s.pending = orch.Pending()
			s.touch()

			message := fmt.Sprintf("accept: link %s to %s", txID, receiptID)
			if acceptErr == nil {
				if t, ok := s.ws.Transaction(txID); ok {
					s.record(auditlog.ActionLink, t.ID, t.ReceiptID, t.Origin, t.Rationale)
				}
				fmt.Printf("linked %s to %s\n", txID, receiptID)
			} else {
				message = fmt.Sprintf("accept: drop stale suggestion %s/%s", txID, receiptID)
			}

			finErr := s.finish(cmd.Context(), message)
			if acceptErr != nil {
				return acceptErr
			}
			return finErr
		},
	}
}
