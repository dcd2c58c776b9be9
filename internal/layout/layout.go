// Package layout describes the table layouts of supported bank statements.
package layout

import (
	"regexp"
	"strings"
)

// Role identifies what a statement column holds.
type Role string

const (
	RoleDate        Role = "date"
	RoleValueDate   Role = "value_date"
	RoleDescription Role = "description"
	RoleCheque      Role = "cheque"
	RoleWithdrawal  Role = "withdrawal"
	RoleDeposit     Role = "deposit"
	RoleBalance     Role = "balance"
)

// Column is one column of a transaction table as printed in the header.
type Column struct {
	Role Role

	// Header holds the column's text on each header line; "" where the line
	// is blank above or below the column.
	Header []string
}

// Label returns the non-blank header lines joined by one space.
func (c Column) Label() string {
	var parts []string
	for _, h := range c.Header {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return strings.Join(parts, " ")
}

// Layout describes one bank's transaction table format.
type Layout struct {
	Name string

	// Anchor is the prefix of the leftmost cell on the row that starts a
	// transaction table. Rows above it are page furniture.
	Anchor string

	// HeaderLines is the number of header rows directly after the anchor row.
	HeaderLines int

	Columns []Column

	// DateFormat parses the printed day and month, without the year.
	DateFormat string

	// StopAt ends a table: rows after it are not parsed.
	StopAt string

	// PeriodPattern finds the statement period. It must have two submatches,
	// the first and last day, both parseable with PeriodFormat.
	PeriodPattern *regexp.Regexp
	PeriodFormat  string
}

// HeaderText returns the header of columns [from, to) read line by line,
// left to right within a line, normalized for comparison.
func (l *Layout) HeaderText(from, to int) string {
	var words []string
	for line := 0; line < l.HeaderLines; line++ {
		for _, c := range l.Columns[from:to] {
			if line < len(c.Header) {
				words = append(words, strings.Fields(c.Header[line])...)
			}
		}
	}
	return Normalize(strings.Join(words, " "))
}

// Index returns the position of the column with the given role, or -1.
func (l *Layout) Index(role Role) int {
	for i, c := range l.Columns {
		if c.Role == role {
			return i
		}
	}
	return -1
}

// Normalize lowercases s and collapses whitespace, newlines included.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
