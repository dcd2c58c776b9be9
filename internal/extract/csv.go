package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/stmtparse/internal/model"
)

// Cell newlines are written as a literal backslash-n so each table row stays
// on one CSV line.
var (
	escaper   = strings.NewReplacer("\n", `\n`)
	unescaper = strings.NewReplacer(`\n`, "\n")
)

// WriteTableCSV writes the cell texts of a table, one CSV row per table row.
func WriteTableCSV(w io.Writer, t model.Table) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, row := range t.Data() {
		for j := range row {
			row[j] = escaper.Replace(row[j])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return cw.Error()
}

// ReadTableCSV reads a table written by WriteTableCSV. Short rows are padded
// to the widest row. The result carries no span positions.
func ReadTableCSV(r io.Reader, index int) (model.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return model.Table{}, fmt.Errorf("reading table CSV: %w", err)
	}

	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}
	for i, rec := range records {
		for j := range rec {
			rec[j] = unescaper.Replace(rec[j])
		}
		for len(rec) < width {
			rec = append(rec, "")
		}
		records[i] = rec
	}
	return model.TableFromData(index, records), nil
}
