package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matchbook-dev/matchbook/internal/auditlog"
)

func newIgnoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ignore <transaction-id>",
		Short: "Exclude a transaction from matching and statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}

			txID := args[0]
			if err := s.ws.Ignore(txID); err != nil {
				s.close()
				return err
			}
			s.touch()
			s.record(auditlog.ActionIgnore, txID, "", "", "excluded from matching")

			fmt.Printf("ignoring %s\n", txID)
			return s.finish(cmd.Context(), fmt.Sprintf("ignore %s", txID))
		},
	}
}

func newUnignoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unignore <transaction-id>",
		Short: "Return an ignored transaction to the unmatched pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}

			txID := args[0]
			if err := s.ws.Unignore(txID); err != nil {
				s.close()
				return err
			}
			s.touch()
			s.record(auditlog.ActionRestore, txID, "", "", "returned to matching")

			fmt.Printf("restored %s\n", txID)
			return s.finish(cmd.Context(), fmt.Sprintf("unignore %s", txID))
		},
	}
}
