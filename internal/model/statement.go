package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpecialRow is a description label that carries statement totals instead of a transaction.
type SpecialRow string

const (
	RowBalanceBroughtForward     SpecialRow = "BALANCE B/F"
	RowBalanceCarriedForward     SpecialRow = "BALANCE C/F"
	RowTotalWithdrawalsDeposits  SpecialRow = "Total Withdrawals/Deposits"
	RowTotalInterestPaidThisYear SpecialRow = "Total Interest Paid This Year"
	RowAverageBalance            SpecialRow = "Average Balance"
)

// SpecialRows lists every recognised special row label.
var SpecialRows = []SpecialRow{
	RowBalanceBroughtForward,
	RowBalanceCarriedForward,
	RowTotalWithdrawalsDeposits,
	RowTotalInterestPaidThisYear,
	RowAverageBalance,
}

// IsSpecialRow reports whether description is exactly a special row label.
func IsSpecialRow(description string) (SpecialRow, bool) {
	for _, r := range SpecialRows {
		if string(r) == description {
			return r, true
		}
	}
	return "", false
}

// Info holds everything in a monthly statement except the transactions.
type Info struct {
	AccountNo                 string              `json:"account_no,omitempty"`
	PeriodStart               *time.Time          `json:"period_start,omitempty"`
	PeriodEnd                 *time.Time          `json:"period_end,omitempty"`
	BalanceBroughtForward     decimal.NullDecimal `json:"balance_brought_forward"`
	BalanceCarriedForward     decimal.NullDecimal `json:"balance_carried_forward"`
	TotalWithdrawals          decimal.NullDecimal `json:"total_withdrawals"`
	TotalDeposits             decimal.NullDecimal `json:"total_deposits"`
	TotalInterestPaidThisYear decimal.NullDecimal `json:"total_interest_paid_this_year"`
	AverageBalance            decimal.NullDecimal `json:"average_balance"`
}

// Statement is one parsed monthly statement.
type Statement struct {
	Name         string        `json:"name"` // file stem of the source PDF
	Info         Info          `json:"info"`
	Transactions []Transaction `json:"transactions"`
}

// Period returns "YYYY-MM" of the period end, or "" when no period was detected.
func (s Statement) Period() string {
	if s.Info.PeriodEnd == nil {
		return ""
	}
	return s.Info.PeriodEnd.Format("2006-01")
}
