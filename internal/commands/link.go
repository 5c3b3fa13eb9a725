package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matchbook-dev/matchbook/internal/auditlog"
	"github.com/matchbook-dev/matchbook/internal/manual"
)

func newLinkCommand() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "link <transaction-id> <receipt-id>",
		Short: "Manually link a transaction to a receipt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}

			txID, receiptID := args[0], args[1]
			c := manual.NewController()
			c.DesignateTransaction(txID)
			c.DesignateReceipt(receiptID)
			if err := c.Link(s.ws, note); err != nil {
				s.close()
				return err
			}
			s.touch()

			if t, ok := s.ws.Transaction(txID); ok {
				s.record(auditlog.ActionLink, t.ID, t.ReceiptID, t.Origin, t.Rationale)
			}
			fmt.Printf("linked %s to %s\n", txID, receiptID)
			return s.finish(cmd.Context(), fmt.Sprintf("link %s to %s", txID, receiptID))
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "rationale to record with the link")

	return cmd
}

func newUnlinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <transaction-id>",
		Short: "Release a matched pair back to the unmatched pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}

			txID := args[0]
			receiptID := ""
			if t, ok := s.ws.Transaction(txID); ok {
				receiptID = t.ReceiptID
			}

			c := manual.NewController()
			if err := c.Unlink(s.ws, txID); err != nil {
				s.close()
				return err
			}
			s.touch()
			s.record(auditlog.ActionUnlink, txID, receiptID, "", "unlinked by operator")

			fmt.Printf("unlinked %s from %s\n", txID, receiptID)
			return s.finish(cmd.Context(), fmt.Sprintf("unlink %s", txID))
		},
	}
}
