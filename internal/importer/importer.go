package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matchbook-dev/matchbook/internal/model"
)

// Parser converts a bank statement file into Transactions. Parsers
// assign fresh transaction IDs; dedup across re-imports happens on the
// Reference field when the rows reach the working set.
type Parser interface {
	Parse(r io.Reader) ([]model.Transaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// ForFile picks a parser for a statement file. Workbooks always go to
// the xlsx parser; everything else uses the configured CSV format.
func (r *Registry) ForFile(name, csvFormat string) Parser {
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		return r.Get("xlsx")
	}
	return r.Get(csvFormat)
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&XLSXParser{})
	return r
}

// importDir is the subdirectory for incoming statement files.
const importDir = "import"

// processedDir is the subdirectory for processed statement files.
const processedDir = "import/processed"

// Scan returns statement files (.csv and .xlsx) in <bookRoot>/import/.
func Scan(bookRoot string) ([]FileInfo, error) {
	dir := filepath.Join(bookRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if !strings.HasSuffix(name, ".csv") && !strings.HasSuffix(name, ".xlsx") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(bookRoot, fileName string) error {
	src := filepath.Join(bookRoot, importDir, fileName)
	dstDir := filepath.Join(bookRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// statementRef creates a reference like chase_20250103_GITHUB. References
// are stable across re-imports of the same file, which is what lets the
// working set skip rows it has already seen.
func statementRef(source string, date time.Time, desc string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("%s_%s_%s", source, date.Format("20060102"), prefix)
}
