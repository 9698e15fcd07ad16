// Package sheet imports and exports grid data as spreadsheets: xlsx
// workbooks through excelize and remote Google spreadsheets through the
// Sheets API.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/presu/presu/pkg/moneyfmt"
	"github.com/xuri/excelize/v2"
)

var ErrMissingNameColumn = errors.New("workbook header must contain a Name column")
var ErrNoValueColumns = errors.New("workbook header must contain at least one value column")

// Table is the tabular shape shared by import and export: one Name per row
// plus the numeric value columns in header order.
type Table struct {
	Columns []string
	Rows    []Row
	// Skipped counts imported rows dropped for a missing name or an
	// unparseable value.
	Skipped int
}

type Row struct {
	Name string
	// Category optionally groups rows; empty means the importer's default.
	Category string
	Values   []float64
}

// ParseWorkbook reads the first sheet of an xlsx workbook. The header row
// must contain "Name" and at least one other column; an optional "Category"
// column groups rows. Rows with an empty name or an unparseable value cell
// are skipped and counted, empty value cells default to 0.
func ParseWorkbook(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("could not open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return Table{}, fmt.Errorf("could not read workbook rows: %w", err)
	}
	if len(rows) == 0 {
		return Table{}, ErrMissingNameColumn
	}

	nameCol, categoryCol := -1, -1
	var valueCols []int
	var table Table
	for i, header := range rows[0] {
		switch strings.TrimSpace(header) {
		case "Name":
			nameCol = i
		case "Category":
			categoryCol = i
		case "":
		default:
			valueCols = append(valueCols, i)
			table.Columns = append(table.Columns, strings.TrimSpace(header))
		}
	}
	if nameCol < 0 {
		return Table{}, ErrMissingNameColumn
	}
	if len(valueCols) == 0 {
		return Table{}, ErrNoValueColumns
	}

	for _, cells := range rows[1:] {
		name := strings.TrimSpace(cellAt(cells, nameCol))
		if name == "" {
			table.Skipped++
			continue
		}
		row := Row{Name: name, Values: make([]float64, len(valueCols))}
		if categoryCol >= 0 {
			row.Category = strings.TrimSpace(cellAt(cells, categoryCol))
		}
		ok := true
		for i, col := range valueCols {
			value, parsed := parseAmount(cellAt(cells, col))
			if !parsed {
				ok = false
				break
			}
			row.Values[i] = value
		}
		if !ok {
			table.Skipped++
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Export writes a table to a new workbook: a "Values" sheet with the raw
// numbers and a "Display" sheet with the same cells as formatted text.
func Export(table Table) (*excelize.File, error) {
	f := excelize.NewFile()
	const valuesSheet = "Values"
	if err := f.SetSheetName(f.GetSheetName(0), valuesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet("Display"); err != nil {
		return nil, err
	}

	header := []interface{}{"Name", "Category"}
	for _, col := range table.Columns {
		header = append(header, col)
	}
	for _, sheetName := range []string{valuesSheet, "Display"} {
		if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
			return nil, err
		}
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{row.Name, row.Category}
		display := []interface{}{row.Name, row.Category}
		for _, v := range row.Values {
			values = append(values, v)
			display = append(display, moneyfmt.FormatForDisplay(v))
		}
		if err := f.SetSheetRow(valuesSheet, cell, &values); err != nil {
			return nil, err
		}
		if err := f.SetSheetRow("Display", cell, &display); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func cellAt(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return cells[i]
}

// parseAmount accepts plain numbers and display-convention text. An empty
// cell defaults to 0; anything containing characters outside the convention
// is unparseable.
func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v, true
	}
	for _, r := range raw {
		if !strings.ContainsRune("0123456789.-", r) {
			return 0, false
		}
	}
	return moneyfmt.ParseNumber(raw), true
}
