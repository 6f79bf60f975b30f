// Package export writes imported tables to spreadsheet, columnar and JSON
// formats. Invalid cells are written as blanks or nulls.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/tabimport/internal/table"
	"github.com/xuri/excelize/v2"
)

// ErrNoColumns is returned when a table has nothing to export.
var ErrNoColumns = errors.New("table has no columns")

const columnsSheet = "Columns"

// WriteXLSX writes t as a workbook: one data sheet named after the table and
// a "Columns" sheet listing role, kind and invalid count per column.
func WriteXLSX(w io.Writer, t *table.Table) error {
	if t.NumCols() == 0 {
		return ErrNoColumns
	}
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, t.NumCols())
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for r := 0; r < t.NumRows(); r++ {
		row := make([]any, t.NumCols())
		for i, c := range t.Columns {
			if c.IsInvalid(r) {
				continue
			}
			if c.Kind == table.KindNumeric {
				row[i] = c.Numbers[r]
			} else {
				row[i] = c.Text[r]
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if _, err := f.NewSheet(columnsSheet); err != nil {
		return fmt.Errorf("add columns sheet: %w", err)
	}
	meta := []any{"name", "role", "kind", "invalid"}
	if err := f.SetSheetRow(columnsSheet, "A1", &meta); err != nil {
		return fmt.Errorf("write columns header: %w", err)
	}
	for i, c := range t.Columns {
		row := []any{c.Name, c.Role.String(), c.Kind.String(), c.InvalidCount()}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(columnsSheet, cell, &row); err != nil {
			return fmt.Errorf("write column %q: %w", c.Name, err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// sheetName makes s acceptable as an Excel sheet name.
func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	if s == "" || strings.EqualFold(s, columnsSheet) {
		s = table.DefaultName
	}
	return s
}
