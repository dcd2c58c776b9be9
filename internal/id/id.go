package id

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTransactionID returns a transaction ID like "2023-01-007".
// prefix is the statement period ("2023-01") or, failing that, its name.
func FormatTransactionID(prefix string, seq int) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

// ParseTransactionID splits "2023-01-007" into its prefix and sequence.
func ParseTransactionID(id string) (prefix string, seq int, err error) {
	i := strings.LastIndex(id, "-")
	if i <= 0 || i == len(id)-1 {
		return "", 0, fmt.Errorf("invalid transaction ID format: %q", id)
	}
	seq, err = strconv.Atoi(id[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid sequence in transaction ID %q: %w", id, err)
	}
	if seq < 1 {
		return "", 0, fmt.Errorf("invalid sequence in transaction ID %q: must be positive", id)
	}
	return id[:i], seq, nil
}

// Period parses a "YYYY-MM" prefix into year and month.
func Period(prefix string) (year, month int, err error) {
	parts := strings.SplitN(prefix, "-", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid period %q", prefix)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in period %q: %w", prefix, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in period %q: %w", prefix, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month in period %q", prefix)
	}
	return year, month, nil
}
