// Package tabular reads input tables from and writes results tables to
// local CSV and XLSX files.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/infosynth/internal/core/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses a CSV document whose first record is the header.
// Bare blank lines are skipped; an empty subject must be written as a
// quoted "" field, which reads as a null cell.
func ReadCSV(r io.Reader) (*domain.InputTable, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("%w: csv line %d: %w", domain.ErrSourceAccess, parseErr.Line, parseErr.Err)
		}
		return nil, fmt.Errorf("%w: read csv: %w", domain.ErrSourceAccess, err)
	}

	return domain.ParseTable(records)
}

// WriteCSV writes the results table with an input_value,result header.
// Null input values are written as empty fields.
func WriteCSV(w io.Writer, results *domain.ResultsTable) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{domain.HeaderInputValue, domain.HeaderResult}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range results.Records() {
		if err := cw.Write([]string{record.InputValue.String(), record.Result}); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
