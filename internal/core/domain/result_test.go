package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsTable_AppendAndFreeze(t *testing.T) {
	table := NewResultsTable()

	require.NoError(t, table.Append(ResultRecord{InputValue: TextCell("Acme"), Result: "a@acme.test"}))
	require.NoError(t, table.Append(ResultRecord{InputValue: TextCell(""), Result: ResultNA}))
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"a@acme.test", "NA"}, table.Results())

	table.Freeze()
	assert.True(t, table.Frozen())
	assert.ErrorIs(t, table.Append(ResultRecord{}), ErrResultsFrozen)
	assert.Equal(t, 2, table.Len())
}

func TestResultsTable_RecordsIsCopy(t *testing.T) {
	table := ResultsTableOf([]ResultRecord{{InputValue: TextCell("Acme"), Result: "x"}})

	records := table.Records()
	records[0].Result = "changed"

	assert.Equal(t, "x", table.Records()[0].Result)
	assert.True(t, table.Frozen())
}

func TestRunResult_Dropped(t *testing.T) {
	res := &RunResult{
		Total:     3,
		Processed: 3,
		Results:   ResultsTableOf(make([]ResultRecord, 2)),
	}
	assert.Equal(t, 1, res.Dropped())
	assert.False(t, res.Aligned())

	res.Results = ResultsTableOf(make([]ResultRecord, 3))
	assert.Equal(t, 0, res.Dropped())
	assert.True(t, res.Aligned())

	res.Cancelled = true
	assert.False(t, res.Aligned())
}

func TestRunResult_Duration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res := &RunResult{StartedAt: start, FinishedAt: start.Add(3 * time.Second)}
	assert.Equal(t, 3*time.Second, res.Duration())
}
