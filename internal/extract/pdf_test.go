package extract

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testdata/statement.pdf is a one-page synthetic statement set in 10pt
// Courier, so every glyph advances 6pt.
func TestPDFReader_Tables(t *testing.T) {
	r := NewPDFReader(DefaultOptions())
	tables, err := r.Tables(context.Background(), filepath.Join("testdata", "statement.pdf"))
	require.NoError(t, err)
	require.Len(t, tables, 1)

	tbl := tables[0]
	assert.Equal(t, 1, tbl.Page)
	assert.Equal(t, 0, tbl.Index)
	require.Equal(t, 7, tbl.NumCols())
	require.Len(t, tbl.Rows, 13)

	data := tbl.Data()
	assert.Equal(t, "Account No. 123-456789-001", data[2][0])
	assert.Equal(t, []string{"Transaction", "Value", "Description", "Cheque", "Withdrawal", "Deposit", "Balance"}, data[3])
	assert.Equal(t, []string{"02 JAN", "02 JAN", "FAST PAYMENT", "", "100.00", "", "900.00"}, data[6])
	assert.Equal(t, []string{"", "", "to John", "", "", "", ""}, data[7])
	assert.Equal(t, []string{"15 JAN", "16 JAN", "SALARY", "", "", "2,000.00", "2,850.00"}, data[9])
	assert.Equal(t, []string{"", "", "Total Withdrawals/Deposits", "", "150.00", "2,000.50", ""}, data[12])

	span := tbl.Rows[6][0].Spans
	require.Len(t, span, 1)
	assert.InDelta(t, 40.0, span[0].X0, 0.01)
	assert.InDelta(t, 76.0, span[0].X1, 0.01)
}

func TestPDFReader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDFReader(DefaultOptions()).Tables(ctx, filepath.Join("testdata", "statement.pdf"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPDFReader_NotAPDF(t *testing.T) {
	_, err := NewPDFReader(DefaultOptions()).Tables(context.Background(), filepath.Join("testdata", "missing.pdf"))
	assert.ErrorContains(t, err, "opening PDF")
}
