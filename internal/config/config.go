package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/stmtparse/internal/extract"
	"github.com/cleared-dev/stmtparse/internal/merge"
	"github.com/cleared-dev/stmtparse/internal/output"
)

// FileName is the config file at the project root.
const FileName = "stmtparse.yaml"

// EnvPrefix prefixes every environment override, e.g. STMTPARSE_WORKERS.
const EnvPrefix = "STMTPARSE_"

// Config represents the top-level stmtparse.yaml configuration.
type Config struct {
	Layout     string           `yaml:"layout" env:"LAYOUT"`
	Paths      PathsConfig      `yaml:"paths" envPrefix:"PATHS_"`
	Extraction ExtractionConfig `yaml:"extraction" envPrefix:"EXTRACTION_"`
	Merge      MergeConfig      `yaml:"merge" envPrefix:"MERGE_"`
	Output     OutputConfig     `yaml:"output" envPrefix:"OUTPUT_"`
	Workers    int              `yaml:"workers" env:"WORKERS"`
	LogLevel   string           `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat  string           `yaml:"log_format" env:"LOG_FORMAT"` // "text" or "json"
}

// PathsConfig locates inputs and outputs. Relative paths are resolved
// against the project root.
type PathsConfig struct {
	Statements string `yaml:"statements" env:"STATEMENTS"`
	Results    string `yaml:"results" env:"RESULTS"`
	Failures   string `yaml:"failures" env:"FAILURES"`
	Logs       string `yaml:"logs" env:"LOGS"`
	Database   string `yaml:"database" env:"DATABASE"`
}

// ExtractionConfig tunes table detection. See extract.Options.
type ExtractionConfig struct {
	RowTolerance     float64   `yaml:"row_tolerance" env:"ROW_TOLERANCE"`
	WordGap          float64   `yaml:"word_gap" env:"WORD_GAP"`
	ColumnGap        float64   `yaml:"column_gap" env:"COLUMN_GAP"`
	ColumnSeparators []float64 `yaml:"column_separators,omitempty" env:"COLUMN_SEPARATORS" envSeparator:","`
}

// MergeConfig controls how merged columns are split.
type MergeConfig struct {
	Strategy string `yaml:"strategy" env:"STRATEGY"`
}

// OutputConfig controls result files.
type OutputConfig struct {
	Formats   []string `yaml:"formats" env:"FORMATS" envSeparator:","`
	CSVHeader bool     `yaml:"csv_header" env:"CSV_HEADER"`
	Currency  string   `yaml:"currency" env:"CURRENCY"`
}

// Load reads a stmtparse.yaml file from disk. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from STMTPARSE_* environment variables.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
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

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	opts := extract.DefaultOptions()
	return &Config{
		Layout: "ocbc",
		Paths: PathsConfig{
			Statements: "statements",
			Results:    "results",
			Failures:   "failures",
			Logs:       "logs",
			Database:   "stmtparse.db",
		},
		Extraction: ExtractionConfig{
			RowTolerance: opts.RowTolerance,
			WordGap:      opts.WordGap,
			ColumnGap:    opts.ColumnGap,
		},
		Merge: MergeConfig{
			Strategy: string(merge.StrategyPositional),
		},
		Output: OutputConfig{
			Formats:  []string{string(output.FormatJSON), string(output.FormatCSV)},
			Currency: "SGD",
		},
		Workers:   4,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Validate checks values that are not caught by YAML decoding.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := merge.ParseStrategy(c.Merge.Strategy); err != nil {
		return err
	}
	if _, err := output.ParseFormats(c.Output.Formats); err != nil {
		return err
	}
	if c.Extraction.RowTolerance < 0 || c.Extraction.WordGap < 0 || c.Extraction.ColumnGap < c.Extraction.WordGap {
		return fmt.Errorf("extraction: need 0 <= word_gap <= column_gap and row_tolerance >= 0")
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// ExtractOptions returns the table detection options.
func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{
		RowTolerance: c.Extraction.RowTolerance,
		WordGap:      c.Extraction.WordGap,
		ColumnGap:    c.Extraction.ColumnGap,
		Separators:   c.Extraction.ColumnSeparators,
	}
}

// Resolve returns p relative to root unless p is absolute.
func Resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
