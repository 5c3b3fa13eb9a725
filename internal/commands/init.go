package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matchbook-dev/matchbook/internal/config"
	"github.com/matchbook-dev/matchbook/internal/gitops"
	"github.com/matchbook-dev/matchbook/internal/ledger"
	"github.com/matchbook-dev/matchbook/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string
	var currencyCode string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new book",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, currencyCode)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "book name (defaults to the directory name)")
	cmd.Flags().StringVar(&currencyCode, "currency", "USD", "reporting currency")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name, currencyCode string) error {
	// Create directory structure.
	dirs := []string{
		"ledger",
		"receipts",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if name == "" {
		name = filepath.Base(dir)
	}

	// Write matchbook.yaml.
	cfg := config.Default(name)
	cfg.Ledger.ReportingCurrency = strings.ToUpper(currencyCode)
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write empty ledger files so the book is browsable from day one.
	ws, err := ledger.FromRecords(nil, nil)
	if err != nil {
		return err
	}
	if err := store.NewFileStore(dir).Save(cmd.Context(), ws, nil); err != nil {
		return fmt.Errorf("writing ledger files: %w", err)
	}

	// Write .gitignore. Receipt documents stay out of git; the CSV ledger
	// is the record.
	gitignore := "receipts/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	// Write import/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	// Initialize git and create the initial commit.
	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	hash, err := gitops.CommitAll(dir, "init: open book "+name, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Printf("Initialized book %q at %s (%s)\n", name, dir, hash)
	return nil
}
