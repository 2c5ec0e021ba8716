package driven

import "github.com/custodia-labs/infosynth/internal/core/domain"

// TableReader loads a local tabular file.
type TableReader interface {
	// ReadFile parses path into a table. sheet selects a worksheet for
	// workbook formats and is ignored for delimited files.
	ReadFile(path, sheet string) (*domain.InputTable, error)
}

// ResultsWriter exports a results table to a local file.
type ResultsWriter interface {
	// WriteFile writes results to path. The format follows the file extension.
	WriteFile(path string, results *domain.ResultsTable) error
}
