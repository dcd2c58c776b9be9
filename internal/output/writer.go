package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/stmtparse/internal/extract"
	"github.com/cleared-dev/stmtparse/internal/model"
)

// Format is an output file type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormats validates configured format names.
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, n := range names {
		f := Format(strings.ToLower(strings.TrimSpace(n)))
		switch f {
		case FormatJSON, FormatCSV, FormatXLSX:
		default:
			return nil, fmt.Errorf("unknown output format %q", n)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Writer writes each statement in every configured format under Dir.
type Writer struct {
	Dir     string
	Formats []Format
	Header  bool // header row in transactions CSV
}

// Write writes <Dir>/<name>.<format> for each format and returns the paths.
func (w Writer) Write(s model.Statement) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}

	var paths []string
	for _, f := range w.Formats {
		path := filepath.Join(w.Dir, s.Name+"."+string(f))
		err := writeFile(path, func(out io.Writer) error {
			switch f {
			case FormatJSON:
				return WriteJSON(out, s)
			case FormatCSV:
				return WriteCSV(out, s.Transactions, w.Header)
			case FormatXLSX:
				return WriteXLSX(out, s)
			}
			return fmt.Errorf("unknown output format %q", f)
		})
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SaveFailure writes a table that could not be parsed to <dir>/<name>-<index>.csv.
func SaveFailure(dir, name string, t model.Table) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating failures dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%d.csv", name, t.Index))
	if err := writeFile(path, func(out io.Writer) error {
		return extract.WriteTableCSV(out, t)
	}); err != nil {
		return "", err
	}
	return path, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
