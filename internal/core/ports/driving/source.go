package driving

import (
	"context"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

// SourceService loads input tables.
type SourceService interface {
	// LoadFile reads a local CSV or XLSX file. sheet selects the XLSX worksheet.
	LoadFile(path, sheet string) (*domain.InputTable, error)

	// ListTabs returns the tab titles of a remote spreadsheet.
	ListTabs(ctx context.Context, spreadsheetID string) ([]string, error)

	// LoadTab reads a remote spreadsheet tab.
	LoadTab(ctx context.Context, spreadsheetID, tab string) (*domain.InputTable, error)
}

// ExportService delivers a finished run to an output sink.
type ExportService interface {
	// SaveFile writes the results table to a local file.
	SaveFile(path string, result *domain.RunResult) error

	// WriteBack appends the results as a new column to the source tab.
	WriteBack(ctx context.Context, spreadsheetID, tab string, result *domain.RunResult) error
}
