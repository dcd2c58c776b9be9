// Package runlog keeps an append-only CSV record of parse runs.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one statement parsed during a run.
type Entry struct {
	RunID        uuid.UUID
	Timestamp    time.Time
	Statement    string
	Success      int
	Failure      int
	Ignore       int
	Transactions int
	RowErrors    int
	Invalid      int // invariant violations
}

// Header is the CSV header for parse-log.csv.
const Header = "run_id,timestamp,statement,success,failure,ignore,transactions,row_errors,invalid"

// FileName is the log file inside the logs dir.
const FileName = "parse-log.csv"

const (
	numFields       = 9
	colRunID        = 0
	colTimestamp    = 1
	colStatement    = 2
	colSuccess      = 3
	colFailure      = 4
	colIgnore       = 5
	colTransactions = 6
	colRowErrors    = 7
	colInvalid      = 8
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID.String()
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colStatement] = e.Statement
	row[colSuccess] = strconv.Itoa(e.Success)
	row[colFailure] = strconv.Itoa(e.Failure)
	row[colIgnore] = strconv.Itoa(e.Ignore)
	row[colTransactions] = strconv.Itoa(e.Transactions)
	row[colRowErrors] = strconv.Itoa(e.RowErrors)
	row[colInvalid] = strconv.Itoa(e.Invalid)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	runID, err := uuid.Parse(record[colRunID])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing run id %q: %w", record[colRunID], err)
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	e := Entry{RunID: runID, Timestamp: ts, Statement: record[colStatement]}
	counts := []struct {
		col int
		dst *int
	}{
		{colSuccess, &e.Success},
		{colFailure, &e.Failure},
		{colIgnore, &e.Ignore},
		{colTransactions, &e.Transactions},
		{colRowErrors, &e.RowErrors},
		{colInvalid, &e.Invalid},
	}
	for _, c := range counts {
		n, err := strconv.Atoi(record[c.col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing %s %q: %w", strings.Split(Header, ",")[c.col], record[c.col], err)
		}
		*c.dst = n
	}
	return e, nil
}

// Append writes entries to <dir>/parse-log.csv, creating the file and header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening parse log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <dir>/parse-log.csv.
// Returns an empty slice if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening parse log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading parse log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Summary totals a set of entries.
type Summary struct {
	Runs             int
	Statements       int
	FailedStatements int // statements with at least one failed table
	Success          int
	Failure          int
	Ignore           int
	Transactions     int
	RowErrors        int
	Invalid          int
}

// Summarise totals entries.
func Summarise(entries []Entry) Summary {
	var s Summary
	runs := make(map[uuid.UUID]bool)
	for _, e := range entries {
		runs[e.RunID] = true
		s.Statements++
		if e.Failure > 0 {
			s.FailedStatements++
		}
		s.Success += e.Success
		s.Failure += e.Failure
		s.Ignore += e.Ignore
		s.Transactions += e.Transactions
		s.RowErrors += e.RowErrors
		s.Invalid += e.Invalid
	}
	s.Runs = len(runs)
	return s
}

// TableFailureRate is the share of transaction tables that failed to parse.
// Ignored tables are not transaction tables and do not count.
func (s Summary) TableFailureRate() float64 {
	if s.Success+s.Failure == 0 {
		return 0
	}
	return float64(s.Failure) / float64(s.Success+s.Failure)
}

// StatementFailureRate is the share of statements with a failed table.
func (s Summary) StatementFailureRate() float64 {
	if s.Statements == 0 {
		return 0
	}
	return float64(s.FailedStatements) / float64(s.Statements)
}

// LastRun returns the entries of the most recent run.
func LastRun(entries []Entry) []Entry {
	if len(entries) == 0 {
		return nil
	}
	last := entries[len(entries)-1].RunID
	var out []Entry
	for _, e := range entries {
		if e.RunID == last {
			out = append(out, e)
		}
	}
	return out
}
