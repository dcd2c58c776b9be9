package output

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtparse/internal/model"
)

// TransactionRow is one line of a transactions CSV.
type TransactionRow struct {
	ID              string `csv:"id"`
	TransactionDate string `csv:"transaction_date"`
	ValueDate       string `csv:"value_date"`
	Date            string `csv:"date"`
	Description     string `csv:"description"`
	Cheque          string `csv:"cheque"`
	Withdrawal      string `csv:"withdrawal"`
	Deposit         string `csv:"deposit"`
	Balance         string `csv:"balance"`
}

// NewTransactionRow flattens a transaction. Description lines are joined with
// ";" and absent amounts are empty.
func NewTransactionRow(tx model.Transaction) TransactionRow {
	row := TransactionRow{
		ID:              tx.ID,
		TransactionDate: tx.TransactionDate,
		ValueDate:       tx.ValueDate,
		Description:     tx.Description(),
		Cheque:          tx.Cheque,
		Withdrawal:      amount(tx.Withdrawal),
		Deposit:         amount(tx.Deposit),
		Balance:         amount(tx.Balance),
	}
	if tx.Date != nil {
		row.Date = tx.Date.Format(dateFormat)
	}
	return row
}

const dateFormat = "2006-01-02"

func amount(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

// WriteCSV writes transactions as CSV, with a header row if header is set.
func WriteCSV(w io.Writer, txs []model.Transaction, header bool) error {
	rows := make([]TransactionRow, len(txs))
	for i, tx := range txs {
		rows[i] = NewTransactionRow(tx)
	}

	var err error
	if header {
		err = gocsv.Marshal(rows, w)
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, w)
	}
	if err != nil {
		return fmt.Errorf("writing transactions CSV: %w", err)
	}
	return nil
}
