package domain

import (
	"fmt"
	"strings"
)

// Cell is a single table value.
// Null marks a missing value, as opposed to an empty string.
type Cell struct {
	Text string
	Null bool
}

// TextCell returns a non-null cell holding s.
func TextCell(s string) Cell {
	return Cell{Text: s}
}

// NullCell returns a cell with no value.
func NullCell() Cell {
	return Cell{Null: true}
}

// String returns the cell text. Null cells render as the empty string.
func (c Cell) String() string {
	if c.Null {
		return ""
	}
	return c.Text
}

// IsBlank reports whether the cell is null or only whitespace.
func (c Cell) IsBlank() bool {
	return c.Null || strings.TrimSpace(c.Text) == ""
}

// Row maps column names to values.
type Row map[string]Cell

// InputTable is an ordered, immutable sequence of rows sharing one column set.
type InputTable struct {
	columns []string
	rows    []Row
}

// NewInputTable builds a table from a header and positional rows.
// Rows shorter than the header are padded with null cells; longer rows are rejected.
func NewInputTable(columns []string, rows [][]Cell) (*InputTable, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrEmptyTable)
	}

	seen := make(map[string]struct{}, len(columns))
	for i, name := range columns {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: column %d has an empty name", ErrInvalidInput, i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidInput, name)
		}
		seen[name] = struct{}{}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrEmptyTable)
	}

	t := &InputTable{
		columns: append([]string(nil), columns...),
		rows:    make([]Row, 0, len(rows)),
	}
	for i, cells := range rows {
		if len(cells) > len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns",
				ErrInvalidInput, i+1, len(cells), len(columns))
		}
		row := make(Row, len(columns))
		for j, name := range columns {
			if j < len(cells) {
				row[name] = cells[j]
			} else {
				row[name] = NullCell()
			}
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// Columns returns the column names in header order.
func (t *InputTable) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of data rows.
func (t *InputTable) Len() int {
	return len(t.rows)
}

// Row returns the row at index i.
func (t *InputTable) Row(i int) Row {
	return t.rows[i]
}

// HasColumn reports whether name is part of the column set.
func (t *InputTable) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Values returns every value of one column in row order.
func (t *InputTable) Values(column string) ([]Cell, error) {
	if !t.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	out := make([]Cell, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[column]
	}
	return out, nil
}

// Head returns at most n rows from the start of the table.
func (t *InputTable) Head(n int) []Row {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return t.rows[:n]
}

// ParseTable builds a table from raw string records where the first record
// is the header. Empty strings become null cells, trailing empty rows are
// dropped and empty cells past the header width are ignored.
func ParseTable(records [][]string) (*InputTable, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrEmptyTable)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}

	body := records[1:]
	for len(body) > 0 && emptyRecord(body[len(body)-1]) {
		body = body[:len(body)-1]
	}

	rows := make([][]Cell, len(body))
	for i, record := range body {
		if len(record) > len(header) && emptyRecord(record[len(header):]) {
			record = record[:len(header)]
		}
		cells := make([]Cell, len(record))
		for j, v := range record {
			if v == "" {
				cells[j] = NullCell()
			} else {
				cells[j] = TextCell(v)
			}
		}
		rows[i] = cells
	}

	return NewInputTable(header, rows)
}

func emptyRecord(record []string) bool {
	for _, v := range record {
		if v != "" {
			return false
		}
	}
	return true
}
