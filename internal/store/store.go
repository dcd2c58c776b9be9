// Package store archives parsed statements in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/cleared-dev/stmtparse/internal/id"
	"github.com/cleared-dev/stmtparse/internal/model"
	"github.com/cleared-dev/stmtparse/internal/store/migrations"
)

const dateFormat = "2006-01-02"

// Store persists parsed statements in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateFormat), Valid: true}
}

// SaveStatement stores a statement and its transactions, replacing any
// earlier copy with the same name.
func (s *Store) SaveStatement(ctx context.Context, runID uuid.UUID, st model.Statement) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save %s: %w", st.Name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM transactions WHERE statement = ?`, st.Name); err != nil {
		return fmt.Errorf("delete transactions of %s: %w", st.Name, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM statements WHERE name = ?`, st.Name); err != nil {
		return fmt.Errorf("delete statement %s: %w", st.Name, err)
	}

	info := st.Info
	_, err = tx.ExecContext(ctx,
		`INSERT INTO statements (
		   name, run_id, account_no, period_start, period_end,
		   balance_brought_forward, balance_carried_forward,
		   total_withdrawals, total_deposits,
		   total_interest_paid_this_year, average_balance, parsed_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.Name, runID.String(), info.AccountNo,
		nullDate(info.PeriodStart), nullDate(info.PeriodEnd),
		info.BalanceBroughtForward, info.BalanceCarriedForward,
		info.TotalWithdrawals, info.TotalDeposits,
		info.TotalInterestPaidThisYear, info.AverageBalance,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert statement %s: %w", st.Name, err)
	}

	for _, t := range st.Transactions {
		_, seq, perr := id.ParseTransactionID(t.ID)
		if perr != nil {
			err = fmt.Errorf("statement %s: %w", st.Name, perr)
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (
			   statement, seq, id, transaction_date, value_date, date,
			   description, cheque, withdrawal, deposit, balance
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.Name, seq, t.ID, t.TransactionDate, t.ValueDate, nullDate(t.Date),
			t.Description(), t.Cheque, t.Withdrawal, t.Deposit, t.Balance,
		)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save %s: %w", st.Name, err)
	}
	return nil
}

// Balance is the opening and closing balance of one archived statement.
type Balance struct {
	Name           string
	Period         string // "YYYY-MM" of the period end, "" when unknown
	BroughtForward decimal.NullDecimal
	CarriedForward decimal.NullDecimal
}

// ListBalances returns archived balances ordered by period end, then name.
// Statements without a period come last.
func (s *Store) ListBalances(ctx context.Context) ([]Balance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, period_end, balance_brought_forward, balance_carried_forward
		   FROM statements
		  ORDER BY period_end IS NULL, period_end, name`)
	if err != nil {
		return nil, fmt.Errorf("query balances: %w", err)
	}
	defer rows.Close()

	var out []Balance
	for rows.Next() {
		var b Balance
		var end sql.NullString
		if err := rows.Scan(&b.Name, &end, &b.BroughtForward, &b.CarriedForward); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		if end.Valid && len(end.String) >= len("2006-01") {
			b.Period = end.String[:len("2006-01")]
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balances: %w", err)
	}
	return out, nil
}

// Counts returns how many statements and transactions are archived.
func (s *Store) Counts(ctx context.Context) (statements, transactions int, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM statements), (SELECT COUNT(*) FROM transactions)`,
	).Scan(&statements, &transactions)
	if err != nil {
		return 0, 0, fmt.Errorf("count archive: %w", err)
	}
	return statements, transactions, nil
}

// Break is a place where consecutive statements do not join up.
type Break struct {
	Prev    Balance
	Next    Balance
	Message string
}

// Continuity compares each statement with the one before it. A break is
// reported when the opening balance differs from the previous closing
// balance, or when a month is missing between two periods.
func Continuity(balances []Balance) []Break {
	var out []Break
	for i := 1; i < len(balances); i++ {
		prev, next := balances[i-1], balances[i]

		if prev.CarriedForward.Valid && next.BroughtForward.Valid &&
			!prev.CarriedForward.Decimal.Equal(next.BroughtForward.Decimal) {
			out = append(out, Break{Prev: prev, Next: next, Message: fmt.Sprintf(
				"brought forward %s, previous carried forward %s",
				next.BroughtForward.Decimal.StringFixed(2), prev.CarriedForward.Decimal.StringFixed(2))})
		}

		py, pm, perr := id.Period(prev.Period)
		ny, nm, nerr := id.Period(next.Period)
		if perr != nil || nerr != nil {
			continue
		}
		if gap := (ny*12 + nm) - (py*12 + pm); gap > 1 {
			out = append(out, Break{Prev: prev, Next: next, Message: fmt.Sprintf("%d month(s) missing", gap-1)})
		}
	}
	return out
}
