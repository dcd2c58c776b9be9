package model

import "strings"

// Span is a run of text on one line with its horizontal extent in PDF points.
type Span struct {
	Text string
	X0   float64
	X1   float64
}

// Center returns the horizontal midpoint of the span.
func (s Span) Center() float64 {
	return (s.X0 + s.X1) / 2
}

// Cell is one extracted table cell. Spans is empty when the table was not
// read from a PDF (e.g. replayed from a failure CSV).
type Cell struct {
	Text  string
	Spans []Span
}

// NewCell builds a cell from spans, joining their text with newlines.
func NewCell(spans ...Span) Cell {
	parts := make([]string, len(spans))
	for i, s := range spans {
		parts[i] = s.Text
	}
	return Cell{Text: strings.Join(parts, "\n"), Spans: spans}
}

// HasPositions reports whether every line of the cell has a known extent.
func (c Cell) HasPositions() bool {
	return len(c.Spans) > 0 && len(c.Spans) == len(c.Lines())
}

// Lines splits the cell text on newlines. An empty cell has no lines.
func (c Cell) Lines() []string {
	if c.Text == "" {
		return nil
	}
	return strings.Split(c.Text, "\n")
}

// Table is one whitespace-separated table extracted from a statement page.
type Table struct {
	Page  int // 1-indexed; 0 when unknown
	Index int // position among the statement's tables
	Rows  [][]Cell
}

// NumCols returns the column count. Extraction pads rows to equal width.
func (t Table) NumCols() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// Data returns the cell texts.
func (t Table) Data() [][]string {
	data := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		data[i] = make([]string, len(row))
		for j, c := range row {
			data[i][j] = c.Text
		}
	}
	return data
}

// TableFromData builds a table from plain cell texts.
func TableFromData(index int, data [][]string) Table {
	t := Table{Index: index, Rows: make([][]Cell, len(data))}
	for i, row := range data {
		t.Rows[i] = make([]Cell, len(row))
		for j, s := range row {
			t.Rows[i][j] = Cell{Text: s}
		}
	}
	return t
}
