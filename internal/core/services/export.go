package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
	"github.com/custodia-labs/infosynth/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService delivers finished runs to a file or back to the source tab.
type ExportService struct {
	writer driven.ResultsWriter
	sheets driven.SheetGateway
}

// NewExportService creates an export service. sheets may be nil when
// write-back is not available.
func NewExportService(writer driven.ResultsWriter, sheets driven.SheetGateway) *ExportService {
	return &ExportService{writer: writer, sheets: sheets}
}

// SaveFile writes the run's results table to path.
func (s *ExportService) SaveFile(path string, result *domain.RunResult) error {
	if result == nil || result.Results == nil {
		return fmt.Errorf("%w: no results to save", domain.ErrInvalidInput)
	}
	logger.Debug("Writing %d records to %s", result.Results.Len(), path)
	if err := s.writer.WriteFile(path, result.Results); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	return nil
}

// WriteBack appends the run's results as an "AI Results" column.
// Runs whose results do not line up 1:1 with the input rows are refused
// rather than written misaligned.
func (s *ExportService) WriteBack(ctx context.Context, spreadsheetID, tab string, result *domain.RunResult) error {
	if s.sheets == nil {
		return fmt.Errorf("%w: %w", domain.ErrWriteBack, errSheetsNotConfigured)
	}
	if result == nil || result.Results == nil {
		return fmt.Errorf("%w: no results to write", domain.ErrWriteBack)
	}
	if !result.Aligned() {
		return fmt.Errorf("%w: %w: %d results for %d input rows",
			domain.ErrWriteBack, domain.ErrRowCountMismatch, result.Results.Len(), result.Total)
	}

	logger.Debug("Appending %d values to %s/%s", result.Results.Len(), spreadsheetID, tab)
	err := s.sheets.AppendColumn(ctx, spreadsheetID, tab, domain.WriteBackHeader, result.Results.Results())
	if err != nil {
		if errors.Is(err, domain.ErrWriteBack) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrWriteBack, err)
	}
	return nil
}
