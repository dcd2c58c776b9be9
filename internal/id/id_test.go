package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTransactionID(t *testing.T) {
	assert.Equal(t, "2023-01-001", FormatTransactionID("2023-01", 1))
	assert.Equal(t, "2023-12-042", FormatTransactionID("2023-12", 42))
	assert.Equal(t, "2023-01-1000", FormatTransactionID("2023-01", 1000))
	assert.Equal(t, "jan-statement-003", FormatTransactionID("jan-statement", 3))
}

func TestParseTransactionID(t *testing.T) {
	tests := []struct {
		id         string
		wantPrefix string
		wantSeq    int
	}{
		{"2023-01-001", "2023-01", 1},
		{"2023-12-099", "2023-12", 99},
		{"jan-statement-003", "jan-statement", 3},
		{"stmt-1000", "stmt", 1000},
	}
	for _, tt := range tests {
		prefix, seq, err := ParseTransactionID(tt.id)
		require.NoError(t, err, "ParseTransactionID(%q)", tt.id)
		assert.Equal(t, tt.wantPrefix, prefix)
		assert.Equal(t, tt.wantSeq, seq)
	}
}

func TestParseTransactionID_Invalid(t *testing.T) {
	for _, bad := range []string{"", "nodash", "-001", "2023-01-", "2023-01-abc", "2023-01-000"} {
		_, _, err := ParseTransactionID(bad)
		assert.Error(t, err, "ParseTransactionID(%q) should fail", bad)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for seq := 1; seq <= 120; seq += 17 {
		prefix, got, err := ParseTransactionID(FormatTransactionID("2024-02", seq))
		require.NoError(t, err)
		assert.Equal(t, "2024-02", prefix)
		assert.Equal(t, seq, got)
	}
}

func TestPeriod(t *testing.T) {
	year, month, err := Period("2023-07")
	require.NoError(t, err)
	assert.Equal(t, 2023, year)
	assert.Equal(t, 7, month)

	for _, bad := range []string{"", "2023", "2023-13", "23-01", "2023-1", "abcd-01"} {
		_, _, err := Period(bad)
		assert.Error(t, err, "Period(%q) should fail", bad)
	}
}
