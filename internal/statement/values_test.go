package statement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		null    bool
		wantErr bool
	}{
		{in: "", null: true},
		{in: "  ", null: true},
		{in: "1,234.50", want: "1234.5"},
		{in: "$1,234.50 CR", want: "1234.5"},
		{in: "0.05", want: "0.05"},
		{in: "12", want: "12"},
		{in: "n/a", wantErr: true},
		{in: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.null {
				assert.False(t, got.Valid)
				return
			}
			require.True(t, got.Valid)
			assert.Equal(t, tt.want, got.Decimal.String())
		})
	}
}

func TestResolveDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	jan := Period{Start: day(2023, 1, 1), End: day(2023, 1, 31)}
	got, err := jan.ResolveDate("2 Jan", "5 JAN")
	require.NoError(t, err)
	assert.Equal(t, day(2023, 1, 5), got)

	// A period spanning the new year takes January dates from the end year.
	rollover := Period{Start: day(2022, 12, 15), End: day(2023, 1, 14)}
	got, err = rollover.ResolveDate("2 Jan", "20 DEC")
	require.NoError(t, err)
	assert.Equal(t, day(2022, 12, 20), got)

	got, err = rollover.ResolveDate("2 Jan", "05 Jan")
	require.NoError(t, err)
	assert.Equal(t, day(2023, 1, 5), got)
	assert.True(t, rollover.Contains(got))
	assert.False(t, rollover.Contains(day(2023, 1, 15)))

	_, err = jan.ResolveDate("2 Jan", "JAN 5")
	assert.Error(t, err)
}
