// Package extract turns positioned PDF text into whitespace-separated tables.
//
// Tables are found the way a "stream" extractor does it: glyphs are grouped
// into rows by baseline, into spans by horizontal gaps, and spans are assigned
// to columns either by explicit separators or by clustering the extents of the
// lines that have the most common number of spans.
package extract

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cleared-dev/stmtparse/internal/model"
)

// Glyph is one positioned piece of text as reported by the PDF content stream.
// Y grows upwards (PDF user space).
type Glyph struct {
	S        string
	X        float64
	Y        float64
	W        float64 // advance width; 0 when unknown
	FontSize float64
}

// Options tunes row, span and column detection.
type Options struct {
	// RowTolerance is the maximum baseline difference, in points, for two
	// glyphs to share a row.
	RowTolerance float64

	// WordGap is the largest gap, in ems, treated as no space at all.
	WordGap float64

	// ColumnGap is the largest gap, in ems, still joining text into one span
	// (with a single space). Wider gaps separate columns.
	ColumnGap float64

	// Separators are explicit column boundaries in points, left to right.
	// When set they replace column clustering.
	Separators []float64
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		RowTolerance: 2.0,
		WordGap:      0.25,
		ColumnGap:    1.5,
	}
}

type line struct {
	y     float64
	spans []model.Span
}

// Extract builds one table from the glyphs of a page. ok is false when the
// page has no visible text.
func Extract(glyphs []Glyph, opts Options) (model.Table, bool) {
	lines := buildLines(glyphs, opts)
	if len(lines) == 0 {
		return model.Table{}, false
	}

	var assign func(model.Span) int
	var ncols int
	if len(opts.Separators) > 0 {
		seps := append([]float64(nil), opts.Separators...)
		sort.Float64s(seps)
		assign, ncols = separatorColumns(seps), len(seps)+1
	} else {
		assign, ncols = clusterColumns(lines)
	}

	tbl := model.Table{Rows: make([][]model.Cell, len(lines))}
	for i, l := range lines {
		spans := make([][]model.Span, ncols)
		for _, s := range l.spans {
			c := assign(s)
			spans[c] = append(spans[c], s)
		}
		row := make([]model.Cell, ncols)
		for c := range row {
			if len(spans[c]) > 0 {
				row[c] = model.NewCell(spans[c]...)
			}
		}
		tbl.Rows[i] = row
	}
	return tbl, true
}

// buildLines groups glyphs into rows (top to bottom) and spans (left to right).
func buildLines(glyphs []Glyph, opts Options) []line {
	visible := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) != "" {
			visible = append(visible, g)
		}
	}
	if len(visible) == 0 {
		return nil
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Y > visible[j].Y
	})

	var rows [][]Glyph
	top := visible[0].Y
	cur := []Glyph{visible[0]}
	for _, g := range visible[1:] {
		if top-g.Y > opts.RowTolerance {
			rows = append(rows, cur)
			cur = nil
			top = g.Y
		}
		cur = append(cur, g)
	}
	rows = append(rows, cur)

	lines := make([]line, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		lines = append(lines, line{y: row[0].Y, spans: buildSpans(row, opts)})
	}
	return lines
}

func buildSpans(row []Glyph, opts Options) []model.Span {
	var spans []model.Span
	var sb strings.Builder
	cur := model.Span{X0: row[0].X, X1: glyphEnd(row[0])}
	sb.WriteString(strings.TrimSpace(row[0].S))

	for _, g := range row[1:] {
		em := g.FontSize
		if em <= 0 {
			em = 1
		}
		gap := g.X - cur.X1
		switch {
		case gap <= opts.WordGap*em:
			sb.WriteString(strings.TrimSpace(g.S))
		case gap <= opts.ColumnGap*em:
			sb.WriteByte(' ')
			sb.WriteString(strings.TrimSpace(g.S))
		default:
			cur.Text = sb.String()
			spans = append(spans, cur)
			sb.Reset()
			sb.WriteString(strings.TrimSpace(g.S))
			cur = model.Span{X0: g.X}
		}
		if end := glyphEnd(g); end > cur.X1 {
			cur.X1 = end
		}
	}
	cur.Text = sb.String()
	return append(spans, cur)
}

// glyphEnd estimates where a glyph ends when the content stream gives no width.
func glyphEnd(g Glyph) float64 {
	if g.W > 0 {
		return g.X + g.W
	}
	return g.X + 0.5*g.FontSize*float64(utf8.RuneCountInString(g.S))
}

// clusterColumns finds columns the way a stream extractor does. The most
// common number of spans per line is the column count, and the lines with
// that many spans give the column extents. Spans of other multi-span lines
// that fall wholly between columns add columns (a header-only column such as
// one that is rarely filled); every other span joins the column it starts in
// without widening it, so one full-width line cannot collapse the table.
func clusterColumns(lines []line) (func(model.Span) int, int) {
	n := modeSpanCount(lines)

	var regular []model.Span
	for _, l := range lines {
		if len(l.spans) == n {
			regular = append(regular, l.spans...)
		}
	}
	bounds := mergeExtents(regular)

	var extra []model.Span
	for _, l := range lines {
		if len(l.spans) == n || len(l.spans) < 2 {
			continue
		}
		for _, s := range l.spans {
			if !overlapsAny(bounds, s) {
				extra = append(extra, s)
			}
		}
	}
	if len(extra) > 0 {
		for _, b := range bounds {
			extra = append(extra, model.Span{X0: b[0], X1: b[1]})
		}
		bounds = mergeExtents(extra)
	}

	// Boundaries sit halfway between neighbouring columns.
	seps := make([]float64, len(bounds)-1)
	for i := range seps {
		seps[i] = (bounds[i][1] + bounds[i+1][0]) / 2
	}
	assign := func(s model.Span) int {
		return sort.SearchFloat64s(seps, s.X0)
	}
	return assign, len(bounds)
}

// modeSpanCount returns the most common number of spans per line, the larger
// on a tie. Single-span lines only count when nothing else is on the page.
func modeSpanCount(lines []line) int {
	freq := make(map[int]int)
	for _, l := range lines {
		freq[len(l.spans)]++
	}
	if len(freq) > 1 {
		delete(freq, 1)
	}

	best, bestFreq := 0, 0
	for n, f := range freq {
		if f > bestFreq || (f == bestFreq && n > best) {
			best, bestFreq = n, f
		}
	}
	return best
}

// mergeExtents unions overlapping span extents, left to right.
func mergeExtents(spans []model.Span) [][2]float64 {
	sort.Slice(spans, func(i, j int) bool { return spans[i].X0 < spans[j].X0 })

	var bounds [][2]float64
	for _, s := range spans {
		n := len(bounds)
		if n > 0 && s.X0 <= bounds[n-1][1] {
			bounds[n-1][1] = max(bounds[n-1][1], s.X1)
			continue
		}
		bounds = append(bounds, [2]float64{s.X0, s.X1})
	}
	return bounds
}

func overlapsAny(bounds [][2]float64, s model.Span) bool {
	for _, b := range bounds {
		if s.X0 <= b[1] && s.X1 >= b[0] {
			return true
		}
	}
	return false
}

func separatorColumns(seps []float64) func(model.Span) int {
	return func(s model.Span) int {
		return sort.SearchFloat64s(seps, s.Center())
	}
}
