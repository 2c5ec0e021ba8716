package cli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
)

const (
	// previewRows is how many rows the data and result previews show.
	previewRows = 5

	// maxCellWidth truncates long cells in previews.
	maxCellWidth = 40
)

var spreadsheetURL = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// inputFlags selects the input table and how queries are built from it.
type inputFlags struct {
	file     string
	sheet    string
	tab      string
	column   string
	template string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "input CSV or XLSX file")
	cmd.Flags().StringVarP(&f.sheet, "sheet", "s", "", "Google Sheets spreadsheet ID or URL")
	cmd.Flags().StringVarP(&f.tab, "tab", "t", "", "sheet tab, or XLSX worksheet (default first)")
	cmd.Flags().StringVarP(&f.column, "column", "c", "", "column holding the subject of each query")
	cmd.Flags().StringVarP(&f.template, "template", "q", "",
		`query template, e.g. "headquarters of {company}" (default "Tell me about {column}")`)
}

func (f *inputFlags) validate() error {
	switch {
	case f.file == "" && f.sheet == "":
		return errors.New("one of --file or --sheet is required")
	case f.file != "" && f.sheet != "":
		return errors.New("--file and --sheet cannot be used together")
	case f.sheet != "" && f.tab == "":
		return errors.New("--tab is required with --sheet; list tabs with 'infosynth tabs'")
	case strings.TrimSpace(f.column) == "":
		return errors.New("--column is required")
	}
	return nil
}

// spreadsheetID returns the sheet flag with any URL stripped down to the ID.
func (f *inputFlags) spreadsheetID() string {
	return parseSpreadsheetID(f.sheet)
}

// request builds the run request, falling back to the default template.
func (f *inputFlags) request(t *domain.InputTable) (driving.RunRequest, error) {
	if !t.HasColumn(f.column) {
		return driving.RunRequest{}, fmt.Errorf("%w: %q; available columns: %s",
			domain.ErrColumnNotFound, f.column, strings.Join(t.Columns(), ", "))
	}
	template := f.template
	if strings.TrimSpace(template) == "" {
		template = domain.DefaultTemplate(f.column)
	}
	return driving.RunRequest{Table: t, SubjectColumn: f.column, Template: template}, nil
}

// loadTable reads the table the flags select.
func (f *inputFlags) loadTable(ctx context.Context, sources driving.SourceService) (*domain.InputTable, error) {
	if f.sheet != "" {
		return sources.LoadTab(ctx, f.spreadsheetID(), f.tab)
	}
	return sources.LoadFile(f.file, f.tab)
}

// parseSpreadsheetID accepts a bare ID or a docs.google.com URL.
func parseSpreadsheetID(s string) string {
	s = strings.TrimSpace(s)
	if m := spreadsheetURL.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// printTableHead renders the first rows of t.
func printTableHead(cmd *cobra.Command, t *domain.InputTable, n int) {
	columns := t.Columns()
	rows := make([][]string, 0, n)
	for _, row := range t.Head(n) {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = truncate(row[c].String(), maxCellWidth)
		}
		rows = append(rows, cells)
	}

	cmd.Printf("Data preview (%d of %d rows):\n", len(rows), t.Len())
	cmd.Println(table.New().Headers(columns...).Rows(rows...).Render())
	cmd.Println()
}

// printQueries lists the filled queries for the leading rows.
func printQueries(cmd *cobra.Command, queries []string) {
	cmd.Println("Query preview:")
	for i, q := range queries {
		if q == "" {
			q = "(blank, recorded as " + domain.ResultNA + ")"
		}
		cmd.Printf("  %d. %s\n", i+1, q)
	}
	cmd.Println()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
