// Package report formats run summaries and archived balances for the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtparse/internal/runlog"
	"github.com/cleared-dev/stmtparse/internal/store"
)

// Counts are table outcomes for one statement or a whole run.
type Counts struct {
	Success int
	Failure int
	Ignore  int
}

// Add accumulates c2 into c.
func (c *Counts) Add(c2 Counts) {
	c.Success += c2.Success
	c.Failure += c2.Failure
	c.Ignore += c2.Ignore
}

// StatementLine is the per-statement summary printed after parsing.
func StatementLine(name string, c Counts) string {
	return fmt.Sprintf("parsed: %24s | success: %2d | failure: %2d | ignore: %2d", name, c.Success, c.Failure, c.Ignore)
}

// TotalLine is the summary printed after all statements.
func TotalLine(c Counts) string {
	return fmt.Sprintf("finish | success: %2d | failure: %2d | ignore: %2d", c.Success, c.Failure, c.Ignore)
}

// Money formats an amount in currency, e.g. "$1,234.50". Absent amounts
// print as "-". Unknown currency codes fall back to "1234.50 XYZ".
func Money(d decimal.NullDecimal, currency string) string {
	if !d.Valid {
		return "-"
	}
	c := money.GetCurrency(currency)
	if c == nil {
		return d.Decimal.StringFixed(2) + " " + currency
	}
	minor := d.Decimal.Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(minor, c.Code).Display()
}

// WriteBalances prints one line per archived statement and a line per
// continuity break.
func WriteBalances(w io.Writer, balances []store.Balance, breaks []store.Break, currency string) error {
	if len(balances) == 0 {
		_, err := fmt.Fprintln(w, "no statements archived")
		return err
	}
	for _, b := range balances {
		period := b.Period
		if period == "" {
			period = "-"
		}
		if _, err := fmt.Fprintf(w, "%-24s %-7s  b/f %16s  c/f %16s\n", b.Name, period,
			Money(b.BroughtForward, currency), Money(b.CarriedForward, currency)); err != nil {
			return err
		}
	}
	for _, br := range breaks {
		if _, err := fmt.Fprintf(w, "break: %s -> %s: %s\n", br.Prev.Name, br.Next.Name, br.Message); err != nil {
			return err
		}
	}
	return nil
}

// WriteStats prints run-log totals and failure rates.
func WriteStats(w io.Writer, label string, s runlog.Summary) error {
	_, err := fmt.Fprintf(w,
		"%s: runs %d | statements %d | tables success %d failure %d ignore %d | transactions %d | row errors %d | invalid %d\n"+
			"  table failure rate %s | statement failure rate %s\n",
		label, s.Runs, s.Statements, s.Success, s.Failure, s.Ignore, s.Transactions, s.RowErrors, s.Invalid,
		Percent(s.TableFailureRate()), Percent(s.StatementFailureRate()))
	return err
}

// Percent formats a 0..1 rate.
func Percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}
