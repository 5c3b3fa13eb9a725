package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/matchbook-dev/matchbook/internal/auditlog"
	"github.com/matchbook-dev/matchbook/internal/id"
	"github.com/matchbook-dev/matchbook/internal/model"
)

const receiptDateFormat = "2006-01-02"

func newReceiptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Manage expense receipts",
	}
	cmd.AddCommand(newReceiptAddCommand())
	cmd.AddCommand(newReceiptListCommand())
	cmd.AddCommand(newReceiptRmCommand())
	return cmd
}

func newReceiptAddCommand() *cobra.Command {
	var (
		vendor   string
		date     string
		amount   string
		curr     string
		category string
		document string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a receipt in the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			when, err := time.Parse(receiptDateFormat, date)
			if err != nil {
				return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
			}
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}

			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}

			code := strings.ToUpper(curr)
			if code == "" {
				code = s.cfg.Ledger.ReportingCurrency
			}

			r := model.Receipt{
				ID:          id.NewReceiptID(),
				Vendor:      vendor,
				Date:        when,
				Amount:      model.Money{Amount: value, Currency: code},
				Category:    category,
				DocumentRef: document,
			}
			if err := s.ws.AddReceipt(r); err != nil {
				s.close()
				return err
			}
			s.touch()

			fmt.Println(r.ID)
			return s.finish(cmd.Context(), fmt.Sprintf("receipt: add %s (%s)", r.ID, vendor))
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "merchant name (required)")
	cmd.Flags().StringVar(&date, "date", "", "receipt date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "receipt amount, e.g. 42.99 (required)")
	cmd.Flags().StringVar(&curr, "currency", "", "currency code (default: reporting currency)")
	cmd.Flags().StringVar(&category, "category", "", "expense category")
	cmd.Flags().StringVar(&document, "document", "", "path or URL of the source document")
	cmd.MarkFlagRequired("vendor")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("amount")

	return cmd
}

func newReceiptListCommand() *cobra.Command {
	var unmatchedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List receipts and their match state",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}
			defer s.close()

			receipts := s.ws.Receipts()
			if unmatchedOnly {
				receipts = s.ws.UnmatchedReceipts()
			}
			if len(receipts) == 0 {
				fmt.Println("no receipts")
				return nil
			}

			fmt.Printf("%-14s %-12s %-24s %14s  %s\n", "ID", "DATE", "VENDOR", "AMOUNT", "MATCHED TO")
			for _, r := range receipts {
				matched := "-"
				if txID, ok := s.ws.MatchFor(r.ID); ok {
					matched = txID
				}
				vendor := r.Vendor
				if len(vendor) > 24 {
					vendor = vendor[:24]
				}
				fmt.Printf("%-14s %-12s %-24s %14s  %s\n",
					r.ID, r.Date.Format(receiptDateFormat), vendor, r.Amount.String(), matched)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unmatchedOnly, "unmatched", false, "only receipts without a matched transaction")

	return cmd
}

func newReceiptRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <receipt-id>",
		Short: "Remove a receipt, unlinking any matched transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}

			receiptID := args[0]
			txID, wasMatched := s.ws.MatchFor(receiptID)
			if err := s.ws.RemoveReceipt(receiptID); err != nil {
				s.close()
				return err
			}
			s.touch()
			if wasMatched {
				s.record(auditlog.ActionUnlink, txID, receiptID, "", "receipt removed")
				fmt.Printf("removed %s, unlinked %s\n", receiptID, txID)
			} else {
				fmt.Printf("removed %s\n", receiptID)
			}

			return s.finish(cmd.Context(), fmt.Sprintf("receipt: rm %s", receiptID))
		},
	}
}
