package output

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/stmtparse/internal/model"
)

const (
	SheetTransactions = "Transactions"
	SheetInfo         = "Info"
)

var transactionHeader = []any{"id", "transaction_date", "value_date", "date", "description", "cheque", "withdrawal", "deposit", "balance"}

// WriteXLSX writes a workbook with a Transactions sheet and an Info sheet.
// Amounts are numeric cells; absent amounts are left blank.
func WriteXLSX(w io.Writer, s model.Statement) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetTransactions, "A1", &transactionHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range s.Transactions {
		r := NewTransactionRow(tx)
		row := []any{r.ID, r.TransactionDate, r.ValueDate, r.Date, r.Description, r.Cheque,
			number(tx.Withdrawal), number(tx.Deposit), number(tx.Balance)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetTransactions, cell, &row); err != nil {
			return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	if _, err := f.NewSheet(SheetInfo); err != nil {
		return fmt.Errorf("adding info sheet: %w", err)
	}
	for i, kv := range infoRows(s) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetInfo, cell, &kv); err != nil {
			return fmt.Errorf("writing info: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func number(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	f, _ := d.Decimal.Float64()
	return f
}

func infoRows(s model.Statement) [][]any {
	info := s.Info
	rows := [][]any{
		{"name", s.Name},
		{"account_no", info.AccountNo},
	}
	if info.PeriodStart != nil && info.PeriodEnd != nil {
		rows = append(rows,
			[]any{"period_start", info.PeriodStart.Format(dateFormat)},
			[]any{"period_end", info.PeriodEnd.Format(dateFormat)},
		)
	}
	rows = append(rows,
		[]any{"balance_brought_forward", number(info.BalanceBroughtForward)},
		[]any{"balance_carried_forward", number(info.BalanceCarriedForward)},
		[]any{"total_withdrawals", number(info.TotalWithdrawals)},
		[]any{"total_deposits", number(info.TotalDeposits)},
		[]any{"total_interest_paid_this_year", number(info.TotalInterestPaidThisYear)},
		[]any{"average_balance", number(info.AverageBalance)},
	)
	return rows
}
