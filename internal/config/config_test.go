package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Layout = "ocbc"
	cfg.Workers = 8
	cfg.Merge.Strategy = "left"
	cfg.Extraction.ColumnSeparators = []float64{100, 200.5}
	cfg.Output.Formats = []string{"xlsx"}
	cfg.Output.CSVHeader = true

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "ocbc", cfg.Layout)
	assert.Equal(t, "statements", cfg.Paths.Statements)
	assert.Equal(t, "results", cfg.Paths.Results)
	assert.Equal(t, "failures", cfg.Paths.Failures)
	assert.Equal(t, "logs", cfg.Paths.Logs)
	assert.Equal(t, "stmtparse.db", cfg.Paths.Database)
	assert.Equal(t, "positional", cfg.Merge.Strategy)
	assert.Equal(t, []string{"json", "csv"}, cfg.Output.Formats)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 2.0, cfg.Extraction.RowTolerance)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load("/nonexistent/stmtparse.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\nmerge:\n  strategy: strict\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "strict", cfg.Merge.Strategy)
	assert.Equal(t, "results", cfg.Paths.Results)
	assert.Equal(t, 1.5, cfg.Extraction.ColumnGap)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("workers: [\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "layout: ocbc")
	assert.Contains(t, contents, "row_tolerance: 2")
	assert.Contains(t, contents, "strategy: positional")
	assert.Contains(t, contents, "csv_header: false")
	assert.NotContains(t, contents, "column_separators")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STMTPARSE_WORKERS", "16")
	t.Setenv("STMTPARSE_MERGE_STRATEGY", "left")
	t.Setenv("STMTPARSE_OUTPUT_FORMATS", "csv,xlsx")
	t.Setenv("STMTPARSE_EXTRACTION_COLUMN_SEPARATORS", "90,180")
	t.Setenv("STMTPARSE_PATHS_DATABASE", "/tmp/archive.db")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))

	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, "left", cfg.Merge.Strategy)
	assert.Equal(t, []string{"csv", "xlsx"}, cfg.Output.Formats)
	assert.Equal(t, []float64{90, 180}, cfg.Extraction.ColumnSeparators)
	assert.Equal(t, "/tmp/archive.db", cfg.Paths.Database)
	assert.Equal(t, "results", cfg.Paths.Results, "unset variables keep the loaded value")
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("STMTPARSE_WORKERS", "many")

	err := ApplyEnv(Default())
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"strategy", func(c *Config) { c.Merge.Strategy = "guess" }},
		{"format", func(c *Config) { c.Output.Formats = []string{"pdf"} }},
		{"gaps", func(c *Config) { c.Extraction.ColumnGap = 0.1 }},
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestExtractOptions(t *testing.T) {
	cfg := Default()
	cfg.Extraction.ColumnSeparators = []float64{50}

	opts := cfg.ExtractOptions()
	assert.Equal(t, 2.0, opts.RowTolerance)
	assert.Equal(t, []float64{50}, opts.Separators)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("/proj", "results"), Resolve("/proj", "results"))
	assert.Equal(t, "/abs/out", Resolve("/proj", "/abs/out"))
}
