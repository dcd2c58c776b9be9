// Package merge recovers layout columns from extracted columns that were
// merged because the PDF left too little whitespace between them.
package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/stmtparse/internal/layout"
	"github.com/cleared-dev/stmtparse/internal/model"
)

var (
	// ErrIncompleteHeader means the table ended before all header lines.
	ErrIncompleteHeader = errors.New("incomplete header")
	// ErrUnexpectedHeader means the header does not spell the layout's columns.
	ErrUnexpectedHeader = errors.New("unexpected header")
	// ErrAmbiguousSplit means a merged cell cannot be divided between its columns.
	ErrAmbiguousSplit = errors.New("ambiguous column split")
)

// Group is one extracted column and the layout columns [From, To) it holds.
type Group struct {
	Col  int
	From int
	To   int

	// Centers holds the x-centre of each layout column's header text, when
	// the header carried positions. Only set for merged groups.
	Centers []float64
}

// Size returns how many layout columns the group holds.
func (g Group) Size() int {
	return g.To - g.From
}

// Merged reports whether the extracted column holds more than one layout column.
func (g Group) Merged() bool {
	return g.Size() > 1
}

// MatchHeader reads the header rows of a table and works out which layout
// columns each extracted column holds. Columns must appear in layout order.
func MatchHeader(l *layout.Layout, rows [][]model.Cell) ([]Group, error) {
	if len(rows) < l.HeaderLines {
		return nil, fmt.Errorf("%w: %d of %d header lines", ErrIncompleteHeader, len(rows), l.HeaderLines)
	}
	rows = rows[:l.HeaderLines]

	var groups []Group
	next := 0
	for c := range rows[0] {
		got := columnHeader(rows, c)
		if got == "" {
			return nil, fmt.Errorf("%w: column %d has no header", ErrUnexpectedHeader, c)
		}

		size := 0
		for n := 1; next+n <= len(l.Columns); n++ {
			if l.HeaderText(next, next+n) == got {
				size = n
				break
			}
		}
		if size == 0 {
			return nil, fmt.Errorf("%w: %q at column %d", ErrUnexpectedHeader, got, c)
		}

		g := Group{Col: c, From: next, To: next + size}
		if g.Merged() {
			g.Centers = headerCenters(l, rows, g)
		}
		groups = append(groups, g)
		next += size
	}

	if next != len(l.Columns) {
		return nil, fmt.Errorf("%w: found %d of %d columns", ErrUnexpectedHeader, next, len(l.Columns))
	}
	return groups, nil
}

func columnHeader(rows [][]model.Cell, c int) string {
	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		if c < len(row) {
			parts = append(parts, row[c].Text)
		}
	}
	return layout.Normalize(strings.Join(parts, " "))
}

// headerCenters locates each layout column's header text within the spans of
// a header line that names all of the group's columns, and returns the x
// position of the middle of each text. Character offsets are mapped to x
// linearly within a span. Returns nil if no header line qualifies.
func headerCenters(l *layout.Layout, rows [][]model.Cell, g Group) []float64 {
	for line, row := range rows {
		if g.Col >= len(row) {
			continue
		}
		cell := row[g.Col]
		if !cell.HasPositions() {
			continue
		}

		texts := make([]string, 0, g.Size())
		for _, col := range l.Columns[g.From:g.To] {
			if line >= len(col.Header) || col.Header[line] == "" {
				break
			}
			texts = append(texts, layout.Normalize(col.Header[line]))
		}
		if len(texts) != g.Size() {
			continue
		}

		spanTexts := make([]string, len(cell.Spans))
		starts := make([]int, len(cell.Spans))
		off := 0
		for i, s := range cell.Spans {
			spanTexts[i] = layout.Normalize(s.Text)
			starts[i] = off
			off += len(spanTexts[i]) + 1
		}
		if strings.Join(spanTexts, " ") != strings.Join(texts, " ") {
			continue
		}

		centers := make([]float64, len(texts))
		off = 0
		for i, t := range texts {
			mid := float64(off) + float64(len(t))/2
			centers[i] = xAt(cell.Spans, spanTexts, starts, mid)
			off += len(t) + 1
		}
		return centers
	}
	return nil
}

func xAt(spans []model.Span, texts []string, starts []int, offset float64) float64 {
	for i := len(spans) - 1; i >= 0; i-- {
		if offset < float64(starts[i]) {
			continue
		}
		n := len(texts[i])
		if n == 0 {
			return spans[i].Center()
		}
		frac := (offset - float64(starts[i])) / float64(n)
		frac = min(frac, 1)
		return spans[i].X0 + frac*(spans[i].X1-spans[i].X0)
	}
	return spans[0].X0
}
