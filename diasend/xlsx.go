package diasend

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type xlsxWorkbook struct {
	file   *excelize.File
	sheets []string
}

type table struct {
	name string
	rows [][]string
}

func openXLSX(file string) (*xlsxWorkbook, error) {
	f, err := excelize.OpenFile(file)
	if err != nil {
		return nil, fmt.Errorf("error opening %v (%w)", file, err)
	}

	return &xlsxWorkbook{
		file:   f,
		sheets: f.GetSheetList(),
	}, nil
}

func (w *xlsxWorkbook) Sheets() int {
	return len(w.sheets)
}

func (w *xlsxWorkbook) Sheet(index int) (Sheet, error) {
	if index < 0 || index >= len(w.sheets) {
		return nil, fmt.Errorf("workbook has no worksheet %v", index+1)
	}

	name := w.sheets[index]
	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("unable to read worksheet '%v' (%w)", name, err)
	}

	return &table{name: name, rows: rows}, nil
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}

func (t *table) Name() string {
	return t.name
}

func (t *table) Rows() int {
	return len(t.rows)
}

// Cell returns "" for cells beyond the end of a row since excelize trims trailing empty cells.
func (t *table) Cell(row, col int) string {
	if row < 0 || row >= len(t.rows) {
		return ""
	}

	if r := t.rows[row]; col >= 0 && col < len(r) {
		return clean(r[col])
	}

	return ""
}
