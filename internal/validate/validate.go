// Package validate checks a parsed statement for internal consistency.
package validate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtparse/internal/id"
	"github.com/cleared-dev/stmtparse/internal/model"
)

// Error describes a single invariant violation.
type Error struct {
	Invariant   int
	Ref         string // transaction ID, or "info" for statement totals
	Description string
}

func (e Error) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.Ref, e.Description)
}

const refInfo = "info"

// Statement enforces 7 invariants on a parsed statement. Checks that need a
// value the statement does not print are skipped.
func Statement(s model.Statement) []Error {
	var errs []Error
	info := s.Info
	hundred := decimal.NewFromInt(100)

	// Invariant 1: Running balance. Each printed balance equals the previous
	// balance moved by the transactions since.
	running := info.BalanceBroughtForward
	for _, tx := range s.Transactions {
		if running.Valid {
			running.Decimal = running.Decimal.Add(tx.Amount())
		}
		if !tx.Balance.Valid {
			continue
		}
		if running.Valid && !running.Decimal.Equal(tx.Balance.Decimal) {
			errs = append(errs, Error{
				Invariant:   1,
				Ref:         tx.ID,
				Description: fmt.Sprintf("balance %s, expected %s", tx.Balance.Decimal.StringFixed(2), running.Decimal.StringFixed(2)),
			})
		}
		running = tx.Balance
	}

	for _, tx := range s.Transactions {
		// Invariant 2: Exactly one of withdrawal/deposit per transaction.
		if tx.Withdrawal.Valid == tx.Deposit.Valid {
			errs = append(errs, Error{
				Invariant:   2,
				Ref:         tx.ID,
				Description: "transaction must have exactly one of withdrawal or deposit",
			})
		}

		// Invariant 5: Date within the statement period.
		if tx.Date != nil && info.PeriodStart != nil && info.PeriodEnd != nil {
			if tx.Date.Before(*info.PeriodStart) || tx.Date.After(*info.PeriodEnd) {
				errs = append(errs, Error{
					Invariant: 5,
					Ref:       tx.ID,
					Description: fmt.Sprintf("date %s not in %s..%s", tx.Date.Format("2006-01-02"),
						info.PeriodStart.Format("2006-01-02"), info.PeriodEnd.Format("2006-01-02")),
				})
			}
		}

		// Invariant 6: Exact decimals, no more than 2 decimal places.
		for _, a := range []struct {
			name string
			v    decimal.NullDecimal
		}{{"withdrawal", tx.Withdrawal}, {"deposit", tx.Deposit}, {"balance", tx.Balance}} {
			if a.v.Valid && !a.v.Decimal.Mul(hundred).Equal(a.v.Decimal.Mul(hundred).Floor()) {
				errs = append(errs, Error{
					Invariant:   6,
					Ref:         tx.ID,
					Description: fmt.Sprintf("%s %s has more than 2 decimal places", a.name, a.v.Decimal),
				})
			}
		}
	}

	// Invariant 3: B/F + deposits - withdrawals == C/F.
	if info.BalanceBroughtForward.Valid && info.BalanceCarriedForward.Valid &&
		info.TotalDeposits.Valid && info.TotalWithdrawals.Valid {
		want := info.BalanceBroughtForward.Decimal.Add(info.TotalDeposits.Decimal).Sub(info.TotalWithdrawals.Decimal)
		if !want.Equal(info.BalanceCarriedForward.Decimal) {
			errs = append(errs, Error{
				Invariant:   3,
				Ref:         refInfo,
				Description: fmt.Sprintf("carried forward %s, expected %s", info.BalanceCarriedForward.Decimal.StringFixed(2), want.StringFixed(2)),
			})
		}
	}

	// Invariant 4: Transactions add up to the printed totals.
	withdrawals, deposits := decimal.Zero, decimal.Zero
	for _, tx := range s.Transactions {
		if tx.Withdrawal.Valid {
			withdrawals = withdrawals.Add(tx.Withdrawal.Decimal)
		}
		if tx.Deposit.Valid {
			deposits = deposits.Add(tx.Deposit.Decimal)
		}
	}
	if info.TotalWithdrawals.Valid && !withdrawals.Equal(info.TotalWithdrawals.Decimal) {
		errs = append(errs, Error{
			Invariant:   4,
			Ref:         refInfo,
			Description: fmt.Sprintf("withdrawals sum to %s, total is %s", withdrawals.StringFixed(2), info.TotalWithdrawals.Decimal.StringFixed(2)),
		})
	}
	if info.TotalDeposits.Valid && !deposits.Equal(info.TotalDeposits.Decimal) {
		errs = append(errs, Error{
			Invariant:   4,
			Ref:         refInfo,
			Description: fmt.Sprintf("deposits sum to %s, total is %s", deposits.StringFixed(2), info.TotalDeposits.Decimal.StringFixed(2)),
		})
	}

	// Invariant 7: Unique sequential IDs, contiguous 1..N.
	for i, tx := range s.Transactions {
		_, seq, err := id.ParseTransactionID(tx.ID)
		if err != nil {
			errs = append(errs, Error{
				Invariant:   7,
				Ref:         tx.ID,
				Description: fmt.Sprintf("invalid transaction ID: %v", err),
			})
			continue
		}
		if seq != i+1 {
			errs = append(errs, Error{
				Invariant:   7,
				Ref:         tx.ID,
				Description: fmt.Sprintf("sequence %d at position %d", seq, i+1),
			})
		}
	}

	return errs
}
