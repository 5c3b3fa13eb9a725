package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file at the root of every book directory.
const FileName = "matchbook.yaml"

// Config represents the top-level matchbook.yaml configuration.
type Config struct {
	Book        BookConfig        `yaml:"book"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Matching    MatchingConfig    `yaml:"matching"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
	Import      ImportConfig      `yaml:"import"`
	Storage     StorageConfig     `yaml:"storage"`
	Git         GitConfig         `yaml:"git"`
}

// BookConfig identifies the book.
type BookConfig struct {
	Name string `yaml:"name"`
}

// LedgerConfig sets the reporting currency and conversion rates used for
// value statistics. Rates are units of the reporting currency per unit of
// the keyed currency; codes without a rate count at face value.
type LedgerConfig struct {
	ReportingCurrency string             `yaml:"reporting_currency"`
	Rates             map[string]float64 `yaml:"rates,omitempty"`
}

// MatchingConfig tunes the deterministic matching pass.
type MatchingConfig struct {
	WindowDays      int     `yaml:"window_days"`
	AmountTolerance float64 `yaml:"amount_tolerance"`
}

// SuggestionsConfig controls the fuzzy match capability.
type SuggestionsConfig struct {
	Model          string  `yaml:"model"`
	MinConfidence  float64 `yaml:"min_confidence"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// ImportConfig controls statement file parsing.
type ImportConfig struct {
	CSVFormat string `yaml:"csv_format"`
}

// StorageConfig controls where and how large snapshots may be.
type StorageConfig struct {
	MaxSnapshotBytes int64  `yaml:"max_snapshot_bytes,omitempty"`
	GCSBucket        string `yaml:"gcs_bucket,omitempty"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a matchbook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new book.
func Default(bookName string) *Config {
	return &Config{
		Book: BookConfig{
			Name: bookName,
		},
		Ledger: LedgerConfig{
			ReportingCurrency: "USD",
		},
		Matching: MatchingConfig{
			WindowDays:      5,
			AmountTolerance: 0.05,
		},
		Suggestions: SuggestionsConfig{
			Model:          "gemini-2.5-flash",
			MinConfidence:  0.70,
			TimeoutSeconds: 30,
		},
		Import: ImportConfig{
			CSVFormat: "chase",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Matchbook",
			AuthorEmail: "book@matchbook.dev",
		},
	}
}
