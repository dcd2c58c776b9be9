package extract

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/cleared-dev/stmtparse/internal/model"
)

// PDFReader extracts one table per page from a PDF file.
type PDFReader struct {
	opts Options
}

// NewPDFReader creates a reader with the given detection options.
func NewPDFReader(opts Options) *PDFReader {
	return &PDFReader{opts: opts}
}

// Tables returns the tables of every page that has text, in page order.
func (r *PDFReader) Tables(ctx context.Context, path string) ([]model.Table, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var tables []model.Table
	for n := 1; n <= doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		glyphs, err := pageGlyphs(doc, n)
		if err != nil {
			return nil, fmt.Errorf("reading page %d of %s: %w", n, path, err)
		}

		tbl, ok := Extract(glyphs, r.opts)
		if !ok {
			continue
		}
		tbl.Page = n
		tbl.Index = len(tables)
		tables = append(tables, tbl)
	}
	return tables, nil
}

// pageGlyphs reads the text of one page. The content stream decoder panics
// on some malformed streams.
func pageGlyphs(doc *pdf.Reader, n int) (glyphs []Glyph, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoding content stream: %v", r)
		}
	}()

	p := doc.Page(n)
	if p.V.IsNull() {
		return nil, nil
	}

	texts := p.Content().Text
	glyphs = make([]Glyph, 0, len(texts))
	for _, t := range texts {
		glyphs = append(glyphs, Glyph{
			S:        t.S,
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: t.FontSize,
		})
	}
	return glyphs, nil
}
