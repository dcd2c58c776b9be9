// Package statement turns extracted tables into a parsed bank statement.
package statement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/stmtparse/internal/id"
	"github.com/cleared-dev/stmtparse/internal/layout"
	"github.com/cleared-dev/stmtparse/internal/merge"
	"github.com/cleared-dev/stmtparse/internal/model"
)

var (
	// ErrNoHeader means the table has no anchor row and is not a transaction table.
	ErrNoHeader = errors.New("no transaction table header")
	// ErrColumnCount means a normalized row does not have one value per layout column.
	ErrColumnCount = errors.New("unexpected column count")
)

// Status classifies how a table was handled.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusIgnore  Status = "ignore"
)

// TableOutcome records what happened to one extracted table.
type TableOutcome struct {
	Table  model.Table
	Status Status
	Err    error
}

// RowError is a problem with a single row. It does not fail the table.
type RowError struct {
	Table   int
	Row     int
	Column  string
	Message string
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("table %d row %d: %s", e.Table, e.Row, e.Message)
	}
	return fmt.Sprintf("table %d row %d %s: %s", e.Table, e.Row, e.Column, e.Message)
}

// Result is a parsed statement together with per-table outcomes.
type Result struct {
	Statement model.Statement
	Tables    []TableOutcome
	RowErrors []RowError

	Success int
	Failure int
	Ignore  int
}

// Failures returns the tables that looked like transaction tables but could not be parsed.
func (r *Result) Failures() []model.Table {
	var out []model.Table
	for _, t := range r.Tables {
		if t.Status == StatusFailure {
			out = append(out, t.Table)
		}
	}
	return out
}

// Parser parses statements of one layout. It holds no per-statement state
// and is safe for concurrent use.
type Parser struct {
	layout   *layout.Layout
	resolver merge.Resolver
	log      logrus.FieldLogger
}

// NewParser creates a parser for layout l.
func NewParser(l *layout.Layout, resolver merge.Resolver, log logrus.FieldLogger) *Parser {
	return &Parser{layout: l, resolver: resolver, log: log}
}

// Layout returns the layout the parser reads.
func (p *Parser) Layout() *layout.Layout {
	return p.layout
}

// Parse builds the statement called name from its extracted tables.
func (p *Parser) Parse(ctx context.Context, name string, tables []model.Table) (*Result, error) {
	log := p.log.WithField("statement", name)
	res := &Result{Statement: model.Statement{Name: name}}

	period, ok := p.FindPeriod(tables)
	var pp *Period
	if ok {
		pp = &period
		start, end := period.Start, period.End
		res.Statement.Info.PeriodStart = &start
		res.Statement.Info.PeriodEnd = &end
	} else {
		log.Warn("statement period not found, dates are kept as printed")
	}

	var special []specialRow
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(t.Rows) == 0 {
			continue
		}

		tlog := log.WithField("table", t.Index)
		rows, account, err := p.header(t)
		switch {
		case errors.Is(err, ErrNoHeader):
			res.Ignore++
			res.Tables = append(res.Tables, TableOutcome{Table: t, Status: StatusIgnore, Err: err})
			continue
		case err != nil:
			tlog.WithError(err).Warn("transaction table not parsed")
			res.Failure++
			res.Tables = append(res.Tables, TableOutcome{Table: t, Status: StatusFailure, Err: err})
			continue
		}

		res.Success++
		res.Tables = append(res.Tables, TableOutcome{Table: t, Status: StatusSuccess})
		if res.Statement.Info.AccountNo == "" {
			res.Statement.Info.AccountNo = account
		}

		rp := rowParser{layout: p.layout, period: pp, table: t.Index}
		txs, sp := rp.parse(rows)
		res.Statement.Transactions = append(res.Statement.Transactions, txs...)
		res.RowErrors = append(res.RowErrors, rp.errs...)
		special = append(special, sp...)
	}

	info, errs := p.specialRows(special)
	info.AccountNo = res.Statement.Info.AccountNo
	info.PeriodStart = res.Statement.Info.PeriodStart
	info.PeriodEnd = res.Statement.Info.PeriodEnd
	res.Statement.Info = info
	res.RowErrors = append(res.RowErrors, errs...)

	prefix := res.Statement.Period()
	if prefix == "" {
		prefix = name
	}
	for i := range res.Statement.Transactions {
		res.Statement.Transactions[i].ID = id.FormatTransactionID(prefix, i+1)
	}

	for _, e := range res.RowErrors {
		log.WithFields(logrus.Fields{"table": e.Table, "row": e.Row}).Warn(e.Message)
	}
	return res, nil
}

// FindPeriod searches every cell of every table for the statement period.
func (p *Parser) FindPeriod(tables []model.Table) (Period, bool) {
	if p.layout.PeriodPattern == nil {
		return Period{}, false
	}
	for _, t := range tables {
		for _, row := range t.Rows {
			for _, c := range row {
				text := strings.Join(strings.Fields(c.Text), " ")
				m := p.layout.PeriodPattern.FindStringSubmatch(text)
				if len(m) < 3 {
					continue
				}
				start, err1 := time.Parse(p.layout.PeriodFormat, m[1])
				end, err2 := time.Parse(p.layout.PeriodFormat, m[2])
				if err1 != nil || err2 != nil || end.Before(start) {
					continue
				}
				return Period{Start: start, End: end}, true
			}
		}
	}
	return Period{}, false
}

// header finds the anchor row, matches the header below it and normalizes
// every data row to the layout's columns. Normalizing stops after the
// layout's StopAt row.
func (p *Parser) header(t model.Table) ([][]string, string, error) {
	anchor := -1
	for i, row := range t.Rows {
		if len(row) == 0 {
			return nil, "", ErrNoHeader
		}
		if strings.HasPrefix(row[0].Text, p.layout.Anchor) {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return nil, "", ErrNoHeader
	}
	account := accountNo(t.Rows[anchor], p.layout.Anchor)

	headerRows := t.Rows[anchor+1:]
	groups, err := merge.MatchHeader(p.layout, headerRows)
	if err != nil {
		return nil, account, err
	}

	desc := p.layout.Index(layout.RoleDescription)
	var rows [][]string
	for _, row := range headerRows[p.layout.HeaderLines:] {
		vals, err := p.resolver.Row(groups, row)
		if err != nil {
			return nil, account, err
		}
		if len(vals) != len(p.layout.Columns) {
			return nil, account, fmt.Errorf("%w: %d", ErrColumnCount, len(vals))
		}
		rows = append(rows, vals)
		if desc >= 0 && p.layout.StopAt != "" && vals[desc] == p.layout.StopAt {
			break
		}
	}
	return rows, account, nil
}

func accountNo(row []model.Cell, anchor string) string {
	if s := strings.TrimSpace(strings.TrimPrefix(row[0].Text, anchor)); s != "" {
		return strings.Join(strings.Fields(s), " ")
	}
	for _, c := range row[1:] {
		if s := strings.TrimSpace(c.Text); s != "" {
			return strings.Join(strings.Fields(s), " ")
		}
	}
	return ""
}

// specialRows fills statement info from rows with special descriptions.
// Every page repeats the brought-forward balance, so the first one is kept;
// for the other rows the last one wins.
func (p *Parser) specialRows(rows []specialRow) (model.Info, []RowError) {
	var info model.Info
	var errs []RowError

	for _, r := range rows {
		set := func(dst *decimal.NullDecimal, role layout.Role) {
			d, err := ParseAmount(r.value(p.layout, role))
			if err != nil {
				errs = append(errs, RowError{Table: r.table, Row: r.row, Column: string(role), Message: fmt.Sprintf("%s: %v", r.kind, err)})
				return
			}
			*dst = d
		}

		switch r.kind {
		case model.RowBalanceBroughtForward:
			if !info.BalanceBroughtForward.Valid {
				set(&info.BalanceBroughtForward, layout.RoleBalance)
			}
		case model.RowBalanceCarriedForward:
			set(&info.BalanceCarriedForward, layout.RoleBalance)
		case model.RowTotalWithdrawalsDeposits:
			set(&info.TotalWithdrawals, layout.RoleWithdrawal)
			set(&info.TotalDeposits, layout.RoleDeposit)
		case model.RowTotalInterestPaidThisYear:
			set(&info.TotalInterestPaidThisYear, layout.RoleDeposit)
		case model.RowAverageBalance:
			set(&info.AverageBalance, layout.RoleDeposit)
		}
	}
	return info, errs
}
