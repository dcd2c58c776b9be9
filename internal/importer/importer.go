// Package importer finds statements on disk and loads their extracted tables.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cleared-dev/stmtparse/internal/extract"
	"github.com/cleared-dev/stmtparse/internal/model"
)

// FileInfo describes one statement found on disk. A statement replayed from
// table CSVs has one path per table.
type FileInfo struct {
	Name  string // statement name, the file stem
	Paths []string
	Size  int64
}

// Source loads the tables of statements stored in one format.
type Source interface {
	Scan(dir string) ([]FileInfo, error)
	Tables(ctx context.Context, f FileInfo) ([]model.Table, error)
	Format() string
}

// Registry holds named sources.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source. Panics on duplicate format.
func (r *Registry) Register(s Source) {
	key := strings.ToLower(s.Format())
	if _, ok := r.sources[key]; ok {
		panic("duplicate source format: " + key)
	}
	r.sources[key] = s
}

// Get returns the source for format, or nil.
func (r *Registry) Get(format string) Source {
	return r.sources[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with the PDF and table CSV sources.
func DefaultRegistry(opts extract.Options) *Registry {
	r := NewRegistry()
	r.Register(NewPDFSource(opts))
	r.Register(&CSVSource{})
	return r
}

// Select keeps the statements named in names, matched by name or file name.
// An empty names list keeps everything.
func Select(files []FileInfo, names []string) ([]FileInfo, error) {
	if len(names) == 0 {
		return files, nil
	}
	byName := make(map[string]FileInfo, len(files))
	for _, f := range files {
		byName[f.Name] = f
	}

	var out []FileInfo
	for _, n := range names {
		stem := strings.TrimSuffix(filepath.Base(n), filepath.Ext(n))
		f, ok := byName[stem]
		if !ok {
			return nil, fmt.Errorf("statement %q not found", n)
		}
		out = append(out, f)
	}
	return out, nil
}

// PDFSource reads statement PDFs.
type PDFSource struct {
	reader *extract.PDFReader
}

// NewPDFSource creates a PDF source with the given extraction options.
func NewPDFSource(opts extract.Options) *PDFSource {
	return &PDFSource{reader: extract.NewPDFReader(opts)}
}

// Format returns the source name.
func (s *PDFSource) Format() string { return "pdf" }

// Scan returns the PDF files in dir sorted by name.
func (s *PDFSource) Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading statements dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !strings.EqualFold(ext, ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:  strings.TrimSuffix(e.Name(), ext),
			Paths: []string{filepath.Join(dir, e.Name())},
			Size:  info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Tables extracts one table per page.
func (s *PDFSource) Tables(ctx context.Context, f FileInfo) ([]model.Table, error) {
	if len(f.Paths) != 1 {
		return nil, fmt.Errorf("statement %s: expected one PDF, got %d paths", f.Name, len(f.Paths))
	}
	return s.reader.Tables(ctx, f.Paths[0])
}

// CSVSource replays tables saved as <name>-<index>.csv, the format failed
// tables are written in. Replayed tables carry no positions.
type CSVSource struct{}

// Format returns the source name.
func (s *CSVSource) Format() string { return "csv" }

// Scan groups the table CSVs in dir by statement name, tables in index order.
func (s *CSVSource) Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading tables dir: %w", err)
	}

	type table struct {
		index int
		path  string
	}
	groups := make(map[string][]table)
	sizes := make(map[string]int64)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		name, index, ok := SplitTableFile(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		groups[name] = append(groups[name], table{index, filepath.Join(dir, e.Name())})
		sizes[name] += info.Size()
	}

	files := make([]FileInfo, 0, len(groups))
	for name, tables := range groups {
		sort.Slice(tables, func(i, j int) bool { return tables[i].index < tables[j].index })
		f := FileInfo{Name: name, Size: sizes[name]}
		for _, t := range tables {
			f.Paths = append(f.Paths, t.path)
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Tables reads every table CSV of the statement.
func (s *CSVSource) Tables(ctx context.Context, f FileInfo) ([]model.Table, error) {
	var tables []model.Table
	for _, path := range f.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, index, ok := SplitTableFile(filepath.Base(path))
		if !ok {
			return nil, fmt.Errorf("table file name %s has no index", path)
		}
		t, err := readTable(path, index)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func readTable(path string, index int) (model.Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return model.Table{}, fmt.Errorf("opening table %s: %w", path, err)
	}
	defer fh.Close()

	t, err := extract.ReadTableCSV(fh, index)
	if err != nil {
		return model.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// SplitTableFile splits "2023-01-3.csv" into "2023-01" and 3.
func SplitTableFile(file string) (name string, index int, ok bool) {
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	i := strings.LastIndex(stem, "-")
	if i <= 0 {
		return "", 0, false
	}
	index, err := strconv.Atoi(stem[i+1:])
	if err != nil || index < 0 {
		return "", 0, false
	}
	return stem[:i], index, true
}
