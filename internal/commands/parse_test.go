package commands_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtparse/internal/model"
	"github.com/cleared-dev/stmtparse/internal/runlog"
)

// newProject initializes a project and copies the table CSVs of
// testdata/<fixture> into its statements dir.
func newProject(t *testing.T, fixtures ...string) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runStmtparse(t, "init", dir)
	require.NoError(t, err, out)

	for _, fixture := range fixtures {
		addStatements(t, dir, fixture)
	}
	return dir
}

func addStatements(t *testing.T, dir, fixture string) {
	t.Helper()
	files, err := filepath.Glob(filepath.Join("testdata", fixture, "*.csv"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "statements", filepath.Base(f)), data, 0o644))
	}
}

func TestParse_Summary(t *testing.T) {
	dir := newProject(t, "statements")

	out, err := runStmtparse(t, "parse", "--repo", dir, "--source", "csv")
	require.NoError(t, err, out)

	assert.Contains(t, out, "parsed:                  2023-01 | success:  1 | failure:  0 | ignore:  0")
	assert.Contains(t, out, "parsed:                  2023-02 | success:  1 | failure:  1 | ignore:  0")
	assert.Contains(t, out, "finish | success:  2 | failure:  1 | ignore:  0")
	assert.Less(t, strings.Index(out, "2023-01 |"), strings.Index(out, "2023-02 |"), "summaries in name order")
}

func TestParse_WritesResults(t *testing.T) {
	dir := newProject(t, "statements")

	out, err := runStmtparse(t, "parse", "--repo", dir, "--source", "csv", "--workers", "1")
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(dir, "results", "2023-01.json"))
	require.NoError(t, err)
	var st model.Statement
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, "2023-01", st.Name)
	assert.Equal(t, "123-456789-001", st.Info.AccountNo)
	require.Len(t, st.Transactions, 2)
	assert.Equal(t, "2023-01-001", st.Transactions[0].ID)
	assert.Equal(t, []string{"FAST PAYMENT", "to John"}, st.Transactions[0].Descriptions)

	csvData, err := os.ReadFile(filepath.Join(dir, "results", "2023-02.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "2023-02-001")
	assert.Contains(t, string(csvData), "NETS PURCHASE")

	_, err = os.Stat(filepath.Join(dir, "results", "2023-01.xlsx"))
	assert.True(t, os.IsNotExist(err), "xlsx is not a default format")
}

func TestParse_SavesFailedTables(t *testing.T) {
	dir := newProject(t, "statements")

	out, err := runStmtparse(t, "parse", "--repo", dir, "--source", "csv")
	require.NoError(t, err, out)

	failures, err := filepath.Glob(filepath.Join(dir, "failures", "*.csv"))
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "2023-02-1.csv", filepath.Base(failures[0]))

	// Failed tables can be replayed as a statement of their own.
	out, err = runStmtparse(t, "parse", "--repo", dir, "--source", "csv", "--dir", "failures", "--dry-run")
	require.NoError(t, err, out)
	assert.Contains(t, out, "failure:  1")
}

func TestParse_RunLog(t *testing.T) {
	dir := newProject(t, "statements")

	_, err := runStmtparse(t, "parse", "--repo", dir, "--source", "csv")
	require.NoError(t, err)
	_, err = runStmtparse(t, "parse", "--repo", dir, "--source", "csv", "2023-01")
	require.NoError(t, err)

	entries, err := runlog.Read(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, entries[0].RunID, entries[1].RunID)
	assert.NotEqual(t, entries[1].RunID, entries[2].RunID)
	assert.Equal(t, "2023-02", entries[1].Statement)
	assert.Equal(t, 1, entries[1].Failure)
	assert.Equal(t, 2, entries[1].Transactions)
	assert.Zero(t, entries[0].Invalid)
}

func TestParse_DryRun(t *testing.T) {
	dir := newProject(t, "statements")

	out, err := runStmtparse(t, "parse", "--repo", dir, "--source", "csv", "--dry-run")
	require.NoError(t, err, out)
	assert.Contains(t, out, "finish | success:  2")

	for _, p := range []string{
		filepath.Join("results", "2023-01.json"),
		filepath.Join("failures", "2023-02-1.csv"),
		filepath.Join("logs", runlog.FileName),
		"stmtparse.db",
	} {
		_, err := os.Stat(filepath.Join(dir, p))
		assert.True(t, os.IsNotExist(err), "%s should not be written", p)
	}
}

func TestParse_NoStatements(t *testing.T) {
	dir := newProject(t)

	out, err := runStmtparse(t, "parse", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "no statements found")
}

func TestParse_UnknownStatement(t *testing.T) {
	dir := newProject(t, "statements")

	out, err := runStmtparse(t, "parse", "--repo", dir, "--source", "csv", "2024-12")
	require.Error(t, err)
	assert.Contains(t, out, `statement "2024-12" not found`)
}

func TestParse_UnknownSource(t *testing.T) {
	dir := newProject(t)

	out, err := runStmtparse(t, "parse", "--repo", dir, "--source", "ofx")
	require.Error(t, err)
	assert.Contains(t, out, `unknown source "ofx"`)
}

func TestParse_Strict(t *testing.T) {
	dir := newProject(t, "statements", "invalid")

	out, err := runStmtparse(t, "parse", "--repo", dir, "--source", "csv")
	require.NoError(t, err, out)
	assert.Contains(t, out, "invariant 1 [2023-03-001]")

	out, err = runStmtparse(t, "parse", "--repo", dir, "--source", "csv", "--strict")
	require.Error(t, err)
	assert.Contains(t, out, "1 statement(s) failed validation")
}

func TestParse_EnvOverride(t *testing.T) {
	dir := newProject(t, "statements")

	cmd := []string{"parse", "--repo", dir, "--source", "csv"}
	t.Setenv("STMTPARSE_OUTPUT_FORMATS", "xlsx")
	out, err := runStmtparse(t, cmd...)
	require.NoError(t, err, out)

	_, err = os.Stat(filepath.Join(dir, "results", "2023-01.xlsx"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "results", "2023-01.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestParse_InvalidConfig(t *testing.T) {
	dir := newProject(t)
	t.Setenv("STMTPARSE_MERGE_STRATEGY", "guess")

	out, err := runStmtparse(t, "parse", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "invalid config")
}

func TestBalances(t *testing.T) {
	dir := newProject(t, "statements", "invalid")

	out, err := runStmtparse(t, "balances", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "no statements archived")

	_, err = runStmtparse(t, "parse", "--repo", dir, "--source", "csv")
	require.NoError(t, err)

	out, err = runStmtparse(t, "balances", "--repo", dir, "--strict")
	require.NoError(t, err, out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "2023-01"))
	assert.Contains(t, lines[0], "2,900.00")
	assert.Contains(t, lines[2], "2,500.00")
	assert.NotContains(t, out, "break:")
}

func TestBalances_Break(t *testing.T) {
	dir := newProject(t, "invalid")
	addStatements(t, dir, "statements")
	require.NoError(t, os.Remove(filepath.Join(dir, "statements", "2023-02-0.csv")))
	require.NoError(t, os.Remove(filepath.Join(dir, "statements", "2023-02-1.csv")))

	_, err := runStmtparse(t, "parse", "--repo", dir, "--source", "csv")
	require.NoError(t, err)

	out, err := runStmtparse(t, "balances", "--repo", dir, "--strict")
	require.Error(t, err)
	assert.Contains(t, out, "break: 2023-01 -> 2023-03: brought forward 2600.00, previous carried forward 2900.00")
	assert.Contains(t, out, "break: 2023-01 -> 2023-03: 1 month(s) missing")
	assert.Contains(t, out, "2 continuity break(s)")
}

func TestStats(t *testing.T) {
	dir := newProject(t, "statements")

	out, err := runStmtparse(t, "stats", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "no runs logged")

	_, err = runStmtparse(t, "parse", "--repo", dir, "--source", "csv")
	require.NoError(t, err)

	out, err = runStmtparse(t, "stats", "--repo", dir, "--last")
	require.NoError(t, err, out)
	assert.Contains(t, out, "all runs: runs 1 | statements 2 | tables success 2 failure 1 ignore 0 | transactions 4")
	assert.Contains(t, out, "table failure rate 33.3% | statement failure rate 50.0%")
	assert.Contains(t, out, "last run: runs 1")
	assert.Contains(t, out, "archive: 2 statements | 4 transactions")
}

func TestParse_PDF(t *testing.T) {
	dir := newProject(t)
	data, err := os.ReadFile(filepath.Join("testdata", "pdf", "2023-01.pdf"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "statements", "2023-01.pdf"), data, 0o644))

	out, err := runStmtparse(t, "parse", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "parsed:                  2023-01 | success:  1 | failure:  0 | ignore:  0")
	assert.NotContains(t, out, "invariant")

	data, err = os.ReadFile(filepath.Join(dir, "results", "2023-01.json"))
	require.NoError(t, err)
	var st model.Statement
	require.NoError(t, json.Unmarshal(data, &st))

	assert.Equal(t, "123-456789-001", st.Info.AccountNo)
	assert.Equal(t, "2850.5", st.Info.BalanceCarriedForward.Decimal.String())
	require.Len(t, st.Transactions, 4)
	assert.Equal(t, []string{"FAST PAYMENT", "to John"}, st.Transactions[0].Descriptions)
	assert.Equal(t, "100", st.Transactions[0].Withdrawal.Decimal.String())
	assert.Equal(t, "16 JAN", st.Transactions[2].ValueDate)
	assert.Equal(t, "2000", st.Transactions[2].Deposit.Decimal.String())
	assert.Equal(t, "2023-01-004", st.Transactions[3].ID)
}

func TestTables_PDF(t *testing.T) {
	out, err := runStmtparse(t, "tables", filepath.Join("testdata", "pdf", "2023-01.pdf"))
	require.NoError(t, err, out)

	assert.Contains(t, out, "# table 0, page 1, 7 columns")
	assert.Contains(t, out, "Transaction,Value,Description,Cheque,Withdrawal,Deposit,Balance\n")
	assert.Contains(t, out, "02 JAN,02 JAN,FAST PAYMENT,,100.00,,900.00\n")
	assert.Contains(t, out, `15 JAN,16 JAN,SALARY,,,"2,000.00","2,850.00"`)
}

func TestTables_MissingFile(t *testing.T) {
	out, err := runStmtparse(t, "tables", filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, out, "opening PDF")
}
