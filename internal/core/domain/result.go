package domain

import (
	"errors"
	"time"
)

// Fixed output vocabulary.
const (
	// ResultNA is recorded for rows whose subject value is empty or null.
	ResultNA = "NA"

	// ResultNotFound is what the extraction prompt asks the model to answer
	// when the search results contain nothing relevant.
	ResultNotFound = "Not found"

	// HeaderInputValue and HeaderResult are the export column names, in order.
	HeaderInputValue = "input_value"
	HeaderResult     = "result"

	// WriteBackHeader titles the column appended to the source tab.
	WriteBackHeader = "AI Results"

	// DefaultResultsFile is the download name used when none is given.
	DefaultResultsFile = "search_results.csv"
)

// ErrResultsFrozen is returned when appending to a completed results table.
var ErrResultsFrozen = errors.New("results table is frozen")

// ResultRecord pairs a row's raw subject value with its extracted answer.
type ResultRecord struct {
	InputValue Cell
	Result     string
}

// ResultsTable accumulates records in row order during a run and is
// frozen once the run completes.
type ResultsTable struct {
	records []ResultRecord
	frozen  bool
}

// NewResultsTable returns an empty, writable table.
func NewResultsTable() *ResultsTable {
	return &ResultsTable{}
}

// ResultsTableOf returns a frozen table holding records.
func ResultsTableOf(records []ResultRecord) *ResultsTable {
	return &ResultsTable{
		records: append([]ResultRecord(nil), records...),
		frozen:  true,
	}
}

// Append adds a record at the end of the table.
func (t *ResultsTable) Append(r ResultRecord) error {
	if t.frozen {
		return ErrResultsFrozen
	}
	t.records = append(t.records, r)
	return nil
}

// Freeze makes the table read-only.
func (t *ResultsTable) Freeze() {
	t.frozen = true
}

// Frozen reports whether the table is read-only.
func (t *ResultsTable) Frozen() bool {
	return t.frozen
}

// Len returns the number of records.
func (t *ResultsTable) Len() int {
	return len(t.records)
}

// Records returns a copy of the records in order.
func (t *ResultsTable) Records() []ResultRecord {
	return append([]ResultRecord(nil), t.records...)
}

// Results returns only the result column, in order.
func (t *ResultsTable) Results() []string {
	out := make([]string, len(t.records))
	for i, r := range t.records {
		out[i] = r.Result
	}
	return out
}

// RunResult is the outcome of one enrichment run.
// A later run replaces it wholesale; results are never merged.
type RunResult struct {
	// ID uniquely identifies the run.
	ID string

	// SubjectColumn and Template are the run inputs.
	SubjectColumn string
	Template      string

	// Results holds one record per row that produced output. Always frozen.
	Results *ResultsTable

	// Warnings lists recoverable per-row failures in row order.
	Warnings []RowError

	// Total is the number of input rows; Processed is how many were visited.
	Total     int
	Processed int

	// Searches counts search provider calls issued.
	Searches int

	StartedAt  time.Time
	FinishedAt time.Time

	// Cancelled is true when the run stopped before visiting every row.
	Cancelled bool
}

// Dropped returns how many visited rows produced no record.
func (r *RunResult) Dropped() int {
	if r.Results == nil {
		return r.Processed
	}
	return r.Processed - r.Results.Len()
}

// Aligned reports whether the results line up 1:1 with the input rows,
// which write-back requires.
func (r *RunResult) Aligned() bool {
	return !r.Cancelled && r.Results != nil && r.Results.Len() == r.Total
}

// Duration returns the wall-clock length of the run.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
