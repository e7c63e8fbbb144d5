package tabular

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// loadExcel reads the first sheet of a workbook into a Table.
func loadExcel(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}

	table := &Table{Headers: make([]string, 0, len(rows[0]))}
	for _, h := range rows[0] {
		table.Headers = append(table.Headers, strings.TrimSpace(h))
	}
	if len(table.Headers) == 0 {
		return nil, ErrMissingHeader
	}

	for i, record := range rows[1:] {
		row := &Row{Line: i + 2, Data: make(map[string]string, len(table.Headers))}
		for j, h := range table.Headers {
			if j < len(record) {
				row.Data[h] = strings.TrimSpace(record[j])
			} else {
				row.Data[h] = ""
			}
		}
		if row.IsEmpty() {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// saveExcel writes the table to a single-sheet workbook.
func saveExcel(t *Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range t.Rows {
		record := make([]interface{}, len(t.Headers))
		for j, h := range t.Headers {
			record[j] = row.Data[h]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell for row %d: %w", row.Line, err)
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Line, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
