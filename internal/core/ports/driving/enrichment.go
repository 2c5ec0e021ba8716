package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

// Enricher runs the row pipeline over a table.
type Enricher interface {
	// Run processes every row in order and returns the accumulated results.
	// Per-row failures are reported in RunResult.Warnings and never returned.
	// A cancelled ctx stops the run between rows; the partial result is
	// returned with Cancelled set and a nil error.
	Run(ctx context.Context, req RunRequest, onProgress ProgressFunc) (*domain.RunResult, error)

	// Estimate summarises the cost of a run without making network calls.
	Estimate(req RunRequest) (*Estimate, error)
}

// RunRequest holds the inputs of one run.
type RunRequest struct {
	Table         *domain.InputTable
	SubjectColumn string
	Template      string
}

// Progress is emitted after every row, whether or not it produced output.
type Progress struct {
	// Done is the number of rows visited so far.
	Done int

	// Total is the number of input rows.
	Total int

	// Value is the subject value of the row just visited.
	Value string

	// Err is the row's failure, if any.
	Err error
}

// Fraction returns Done/Total in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}

// ProgressFunc receives progress notifications. It may be nil.
type ProgressFunc func(Progress)

// Estimate describes the external calls a run will make.
type Estimate struct {
	// Rows is the number of input rows.
	Rows int

	// Queries is the number of rows with a non-empty subject, each costing one
	// search call and one extraction call.
	Queries int

	// Duration is the expected wall-clock time at the configured pace.
	Duration time.Duration
}

// Previewer renders queries without calling out.
type Previewer interface {
	// Preview returns the filled query for at most n leading rows.
	// Blank subjects render as "".
	Preview(req RunRequest, n int) ([]string, error)
}
