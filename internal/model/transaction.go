package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one line item of a statement's transaction table.
type Transaction struct {
	ID              string              `json:"id"`
	TransactionDate string              `json:"transaction_date"` // as printed, e.g. "02 JAN"
	ValueDate       string              `json:"value_date"`
	Date            *time.Time          `json:"date,omitempty"` // nil when the statement year is unknown
	Value           *time.Time          `json:"value,omitempty"`
	Descriptions    []string            `json:"descriptions"`
	Cheque          string              `json:"cheque"`
	Withdrawal      decimal.NullDecimal `json:"withdrawal"`
	Deposit         decimal.NullDecimal `json:"deposit"`
	Balance         decimal.NullDecimal `json:"balance"`
}

// AppendDescription adds a continuation line to the description.
func (t *Transaction) AppendDescription(s string) {
	t.Descriptions = append(t.Descriptions, s)
}

// Description returns all description lines joined with ";".
func (t Transaction) Description() string {
	return strings.Join(t.Descriptions, ";")
}

// Amount returns deposit minus withdrawal. Absent amounts count as zero.
func (t Transaction) Amount() decimal.Decimal {
	amt := decimal.Zero
	if t.Deposit.Valid {
		amt = amt.Add(t.Deposit.Decimal)
	}
	if t.Withdrawal.Valid {
		amt = amt.Sub(t.Withdrawal.Decimal)
	}
	return amt
}
