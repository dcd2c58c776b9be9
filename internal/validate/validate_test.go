package validate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtparse/internal/model"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func validStatement() model.Statement {
	return model.Statement{
		Name: "2025-01",
		Info: model.Info{
			PeriodStart:           date(2025, 1, 1),
			PeriodEnd:             date(2025, 1, 31),
			BalanceBroughtForward: dec("1000.00"),
			BalanceCarriedForward: dec("1150.00"),
			TotalWithdrawals:      dec("50.00"),
			TotalDeposits:         dec("200.00"),
		},
		Transactions: []model.Transaction{
			{ID: "2025-01-001", Date: date(2025, 1, 3), Withdrawal: dec("50.00")},
			{ID: "2025-01-002", Date: date(2025, 1, 3), Deposit: dec("100.00"), Balance: dec("1050.00")},
			{ID: "2025-01-003", Date: date(2025, 1, 20), Deposit: dec("100.00"), Balance: dec("1150.00")},
		},
	}
}

func invariants(errs []Error) []int {
	var out []int
	for _, e := range errs {
		out = append(out, e.Invariant)
	}
	return out
}

func TestStatement_Valid(t *testing.T) {
	assert.Empty(t, Statement(validStatement()))
}

func TestStatement_EmptyIsValid(t *testing.T) {
	assert.Empty(t, Statement(model.Statement{Name: "empty"}))
}

func TestStatement_Invariant1_RunningBalance(t *testing.T) {
	s := validStatement()
	s.Transactions[1].Balance = dec("1049.00")

	errs := Statement(s)
	require.Len(t, errs, 2)
	assert.Equal(t, 1, errs[0].Invariant)
	assert.Equal(t, "2025-01-002", errs[0].Ref)
	assert.Contains(t, errs[0].Description, "expected 1050.00")
	// The running value resets to each printed balance, so the next
	// transaction is off by one too.
	assert.Equal(t, 1, errs[1].Invariant)
	assert.Equal(t, "2025-01-003", errs[1].Ref)
}

func TestStatement_Invariant1_NoBroughtForward(t *testing.T) {
	s := validStatement()
	s.Info.BalanceBroughtForward = decimal.NullDecimal{}
	s.Info.TotalDeposits = decimal.NullDecimal{}
	s.Info.TotalWithdrawals = decimal.NullDecimal{}

	assert.Empty(t, Statement(s), "checks start at the first printed balance")
}

func TestStatement_Invariant2_ExactlyOneAmount(t *testing.T) {
	s := validStatement()
	s.Transactions[0].Deposit = dec("1.00")
	s.Info = model.Info{}
	s.Transactions[1].Balance = decimal.NullDecimal{}
	s.Transactions[2].Balance = decimal.NullDecimal{}

	errs := Statement(s)
	assert.Equal(t, []int{2}, invariants(errs))

	s.Transactions[0].Deposit = decimal.NullDecimal{}
	s.Transactions[0].Withdrawal = decimal.NullDecimal{}
	assert.Equal(t, []int{2}, invariants(Statement(s)))
}

func TestStatement_Invariant3_CarriedForward(t *testing.T) {
	s := validStatement()
	s.Info.BalanceCarriedForward = dec("1151.00")

	errs := Statement(s)
	require.Equal(t, []int{3}, invariants(errs))
	assert.Equal(t, "info", errs[0].Ref)
}

func TestStatement_Invariant4_Totals(t *testing.T) {
	s := validStatement()
	s.Info.TotalDeposits = dec("300.00")
	s.Info.BalanceCarriedForward = dec("1250.00")

	errs := Statement(s)
	require.Equal(t, []int{4}, invariants(errs))
	assert.Contains(t, errs[0].Description, "deposits sum to 200.00")
}

func TestStatement_Invariant5_DateInPeriod(t *testing.T) {
	s := validStatement()
	s.Transactions[2].Date = date(2025, 2, 1)

	errs := Statement(s)
	require.Equal(t, []int{5}, invariants(errs))
	assert.Contains(t, errs[0].Error(), "invariant 5 [2025-01-003]")
}

func TestStatement_Invariant6_DecimalPlaces(t *testing.T) {
	s := model.Statement{
		Transactions: []model.Transaction{
			{ID: "x-001", Withdrawal: dec("1.005")},
		},
	}
	assert.Equal(t, []int{6}, invariants(Statement(s)))
}

func TestStatement_Invariant7_Sequence(t *testing.T) {
	s := validStatement()
	s.Transactions[1].ID = "2025-01-005"
	s.Transactions[2].ID = "bogus"

	errs := Statement(s)
	assert.Equal(t, []int{7, 7}, invariants(errs))
}
