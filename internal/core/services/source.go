package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
	"github.com/custodia-labs/infosynth/internal/logger"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// errSheetsNotConfigured is returned when spreadsheet access was not set up.
var errSheetsNotConfigured = fmt.Errorf("%w: spreadsheet access not configured", domain.ErrConfiguration)

// SourceService loads input tables from local files or spreadsheet tabs.
type SourceService struct {
	reader driven.TableReader
	sheets driven.SheetGateway
}

// NewSourceService creates a source service. sheets may be nil when only
// local files are used.
func NewSourceService(reader driven.TableReader, sheets driven.SheetGateway) *SourceService {
	return &SourceService{reader: reader, sheets: sheets}
}

// LoadFile reads a local CSV or XLSX file.
func (s *SourceService) LoadFile(path, sheet string) (*domain.InputTable, error) {
	logger.Debug("Loading file %s", path)
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: no file given", domain.ErrSourceAccess)
	}

	table, err := s.reader.ReadFile(path, sheet)
	if err != nil {
		return nil, sourceError(err)
	}
	logger.Debug("Loaded %d rows, columns %v", table.Len(), table.Columns())
	return table, nil
}

// ListTabs returns the tab titles of a remote spreadsheet.
func (s *SourceService) ListTabs(ctx context.Context, spreadsheetID string) ([]string, error) {
	if s.sheets == nil {
		return nil, errSheetsNotConfigured
	}
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, fmt.Errorf("%w: spreadsheet ID is empty", domain.ErrInvalidInput)
	}

	tabs, err := s.sheets.ListTabs(ctx, spreadsheetID)
	if err != nil {
		return nil, sourceError(err)
	}
	if len(tabs) == 0 {
		return nil, fmt.Errorf("%w: no tabs found in spreadsheet", domain.ErrSourceAccess)
	}
	return tabs, nil
}

// LoadTab reads a remote spreadsheet tab.
func (s *SourceService) LoadTab(ctx context.Context, spreadsheetID, tab string) (*domain.InputTable, error) {
	if s.sheets == nil {
		return nil, errSheetsNotConfigured
	}
	logger.Debug("Loading tab %q of spreadsheet %s", tab, spreadsheetID)

	table, err := s.sheets.ReadTab(ctx, spreadsheetID, tab)
	if err != nil {
		return nil, sourceError(err)
	}
	return table, nil
}

// sourceError tags loader failures as source access errors, leaving
// configuration errors untouched.
func sourceError(err error) error {
	if errors.Is(err, domain.ErrSourceAccess) || errors.Is(err, domain.ErrConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrSourceAccess, err)
}
