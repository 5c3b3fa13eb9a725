package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matchbook-dev/matchbook/internal/auditlog"
	"github.com/matchbook-dev/matchbook/internal/importer"
)

func newImportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import bank statement files",
		Long: `Import parses bank statement files into the book's transaction ledger.

With a file argument, that single file is imported in place. With no
arguments, every .csv and .xlsx file in the book's import/ directory is
processed and moved to import/processed/. Re-importing the same rows is
safe: statement references deduplicate them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), bookDir(cmd))
			if err != nil {
				return err
			}

			fileArg := ""
			if len(args) > 0 {
				fileArg = args[0]
			}
			return runImport(cmd, s, fileArg, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "CSV statement format (default from config)")

	return cmd
}

func runImport(cmd *cobra.Command, s *session, fileArg, formatOverride string) error {
	reg := importer.DefaultRegistry()

	csvFormat := s.cfg.Import.CSVFormat
	if formatOverride != "" {
		csvFormat = formatOverride
	}
	if csvFormat == "" {
		csvFormat = "chase"
	}

	var files []importer.FileInfo
	fromImportDir := fileArg == ""
	if fromImportDir {
		scanned, err := importer.Scan(s.root)
		if err != nil {
			s.close()
			return err
		}
		if len(scanned) == 0 {
			s.close()
			fmt.Println("no statement files in import/")
			return nil
		}
		files = scanned
	} else {
		abs, err := filepath.Abs(fileArg)
		if err != nil {
			s.close()
			return fmt.Errorf("resolving path: %w", err)
		}
		files = []importer.FileInfo{{Name: filepath.Base(abs), Path: abs}}
	}

	// A failing file stops the batch, but files already ingested and moved
	// to processed/ must still reach the store, so the error is held until
	// after finish.
	totalAdded := 0
	var runErr error
	for _, fi := range files {
		added, err := importOne(s, reg, fi, csvFormat, fromImportDir)
		if err != nil {
			runErr = err
			break
		}
		totalAdded += added
	}

	finErr := s.finish(cmd.Context(), fmt.Sprintf("import: %d transactions", totalAdded))
	if runErr != nil {
		return runErr
	}
	return finErr
}

func importOne(s *session, reg *importer.Registry, fi importer.FileInfo, csvFormat string, fromImportDir bool) (int, error) {
	p := reg.ForFile(fi.Name, csvFormat)
	if p == nil {
		return 0, fmt.Errorf("no parser registered for format %q", csvFormat)
	}

	f, err := os.Open(fi.Path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", fi.Name, err)
	}
	txns, err := p.Parse(f)
	f.Close()
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", fi.Name, err)
	}

	added, skipped := s.ws.AddStatement(txns)
	s.touch()
	s.record(auditlog.ActionImport, "", "", "", fmt.Sprintf("%s: %d added, %d skipped", fi.Name, added, skipped))

	if fromImportDir {
		if err := importer.MarkProcessed(s.root, fi.Name); err != nil {
			return added, err
		}
	}

	fmt.Printf("%s: %d added, %d skipped\n", fi.Name, added, skipped)
	return added, nil
}
