package tabular

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driven"
)

// Ensure Files implements the interfaces.
var (
	_ driven.TableReader   = (*Files)(nil)
	_ driven.ResultsWriter = (*Files)(nil)
)

// Format is a supported file format.
type Format string

const (
	// FormatCSV is comma-separated text.
	FormatCSV Format = "csv"
	// FormatXLSX is an Excel workbook.
	FormatXLSX Format = "xlsx"
)

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .csv or .xlsx)", domain.ErrUnsupportedType, filepath.Ext(path))
	}
}

// Files reads and writes tables on the local filesystem, choosing the
// format by file extension.
type Files struct{}

// NewFiles creates a file-backed table reader and results writer.
func NewFiles() *Files {
	return &Files{}
}

// ReadFile loads an input table. sheet only applies to XLSX files.
func (f *Files) ReadFile(path, sheet string) (*domain.InputTable, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	if format == FormatXLSX {
		return ReadXLSX(path, sheet)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceAccess, err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// WriteFile writes a results table, replacing any existing file.
func (f *Files) WriteFile(path string, results *domain.ResultsTable) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	if format == FormatXLSX {
		return WriteXLSX(path, results)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(file, results); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
