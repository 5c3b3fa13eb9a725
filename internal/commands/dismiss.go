package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matchbook-dev/matchbook/internal/auditlog"
	"github.com/matchbook-dev/matchbook/internal/suggest"
)

func newDismissCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <transaction-id> <receipt-id>",
		Short: "Discard a pending suggestion without linking",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}

			txID, receiptID := args[0], args[1]
			orch := suggest.NewOrchestrator(nil)
			orch.Restore(s.pending)

			if err := orch.Dismiss(txID, receiptID); err != nil {
				s.close()
				return err
			}
			s.pending = orch.Pending()
			s.touch()
			s.record(auditlog.ActionDismiss, txID, receiptID, "", "dismissed by operator")

			fmt.Printf("dismissed %s/%s\n", txID, receiptID)
			return s.finish(cmd.Context(), fmt.Sprintf("dismiss: %s/%s", txID, receiptID))
		},
	}
}
