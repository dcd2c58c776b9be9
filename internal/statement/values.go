package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a printed currency amount. Everything except digits and
// "." is dropped, so "1,234.50" and "$1,234.50 CR" both give 1234.50. An empty
// string is a valid absent amount.
func ParseAmount(s string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}, nil
	}
	kept := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	if kept == "" {
		return decimal.NullDecimal{}, fmt.Errorf("no digits in amount %q", s)
	}
	d, err := decimal.NewFromString(kept)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return decimal.NewNullDecimal(d), nil
}

// Period is the first and last day covered by a statement.
type Period struct {
	Start time.Time
	End   time.Time
}

// ResolveDate parses a day and month printed without a year and places it in
// the period. The start year is used unless that puts the date before the
// period starts, which happens for January dates on a December-January period.
func (p Period) ResolveDate(layout, s string) (time.Time, error) {
	d, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	t := time.Date(p.Start.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if t.Before(p.Start) {
		t = time.Date(p.End.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	return t, nil
}

// Contains reports whether t falls on a day within the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}
