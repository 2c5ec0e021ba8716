package tabular

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

// ResultsSheet is the sheet name used for XLSX output.
const ResultsSheet = "Results"

// ReadXLSX reads one sheet of a workbook. An empty sheet name selects the
// first sheet.
func ReadXLSX(path, sheet string) (*domain.InputTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", domain.ErrSourceAccess, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrEmptyTable)
		}
		sheet = sheets[0]
	}

	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %w: sheet %q not found", domain.ErrSourceAccess, domain.ErrNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", domain.ErrSourceAccess, sheet, err)
	}

	return domain.ParseTable(rows)
}

// WriteXLSX writes the results table to a new workbook at path.
func WriteXLSX(path string, results *domain.ResultsTable) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, ResultsSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetSheetRow(ResultsSheet, "A1", &[]any{domain.HeaderInputValue, domain.HeaderResult}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, record := range results.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{record.InputValue.String(), record.Result}
		if record.InputValue.Null {
			row[0] = nil
		}
		if err := f.SetSheetRow(ResultsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
