package statement

import (
	"fmt"
	"strings"

	"github.com/cleared-dev/stmtparse/internal/layout"
	"github.com/cleared-dev/stmtparse/internal/model"
)

type specialRow struct {
	kind  model.SpecialRow
	table int
	row   int
	vals  []string
}

func (r specialRow) value(l *layout.Layout, role layout.Role) string {
	if i := l.Index(role); i >= 0 {
		return r.vals[i]
	}
	return ""
}

// rowParser walks the normalized rows of one transaction table.
type rowParser struct {
	layout *layout.Layout
	period *Period
	table  int

	errs []RowError
}

func (rp *rowParser) col(row []string, role layout.Role) string {
	if i := rp.layout.Index(role); i >= 0 {
		return row[i]
	}
	return ""
}

func (rp *rowParser) fail(row int, role layout.Role, format string, args ...any) {
	rp.errs = append(rp.errs, RowError{
		Table:   rp.table,
		Row:     row,
		Column:  string(role),
		Message: fmt.Sprintf(format, args...),
	})
}

// parse returns the table's transactions and its special rows. A row with
// no transaction date continues the description of the transaction above it.
func (rp *rowParser) parse(rows [][]string) ([]model.Transaction, []specialRow) {
	var txs []model.Transaction
	var special []specialRow
	var cur *model.Transaction

	emit := func() {
		if cur != nil {
			txs = append(txs, *cur)
			cur = nil
		}
	}

	for i, row := range rows {
		if blank(row) {
			continue
		}

		desc := rp.col(row, layout.RoleDescription)
		if kind, ok := model.IsSpecialRow(desc); ok {
			// Special rows close the transaction above; text below them is
			// page furniture, not a continuation.
			emit()
			special = append(special, specialRow{kind: kind, table: rp.table, row: i, vals: row})
			if desc == rp.layout.StopAt {
				break
			}
			continue
		}

		if rp.col(row, layout.RoleDate) == "" {
			switch {
			case cur == nil:
				rp.fail(i, layout.RoleDescription, "continuation line %q without a transaction", rowText(row))
			case desc == "":
				rp.fail(i, layout.RoleDescription, "continuation line %q has no description", rowText(row))
			default:
				cur.AppendDescription(desc)
			}
			continue
		}

		emit()
		tx, ok := rp.transaction(i, row)
		if ok {
			cur = &tx
		}
	}
	emit()
	return txs, special
}

func (rp *rowParser) transaction(i int, row []string) (model.Transaction, bool) {
	tx := model.Transaction{
		TransactionDate: rp.col(row, layout.RoleDate),
		ValueDate:       rp.col(row, layout.RoleValueDate),
		Descriptions:    []string{rp.col(row, layout.RoleDescription)},
		Cheque:          rp.col(row, layout.RoleCheque),
	}

	ok := true
	amounts := []struct {
		role layout.Role
		set  func(string) error
	}{
		{layout.RoleWithdrawal, func(s string) (err error) { tx.Withdrawal, err = ParseAmount(s); return }},
		{layout.RoleDeposit, func(s string) (err error) { tx.Deposit, err = ParseAmount(s); return }},
		{layout.RoleBalance, func(s string) (err error) { tx.Balance, err = ParseAmount(s); return }},
	}
	for _, a := range amounts {
		if err := a.set(rp.col(row, a.role)); err != nil {
			rp.fail(i, a.role, "%v", err)
			ok = false
		}
	}
	if !ok {
		return model.Transaction{}, false
	}

	if rp.period != nil {
		if d, err := rp.period.ResolveDate(rp.layout.DateFormat, tx.TransactionDate); err != nil {
			rp.fail(i, layout.RoleDate, "%v", err)
		} else {
			tx.Date = &d
		}
		if tx.ValueDate != "" {
			if d, err := rp.period.ResolveDate(rp.layout.DateFormat, tx.ValueDate); err != nil {
				rp.fail(i, layout.RoleValueDate, "%v", err)
			} else {
				tx.Value = &d
			}
		}
	}
	return tx, true
}

func rowText(row []string) string {
	parts := make([]string, 0, len(row))
	for _, v := range row {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
