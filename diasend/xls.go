package diasend

import (
	"fmt"
	"os"

	"github.com/extrame/xls"
)

// Diasend exports are BIFF8 (.xls) workbooks.
type xlsWorkbook struct {
	workbook *xls.WorkBook
	file     *os.File
}

type xlsSheet struct {
	sheet *xls.WorkSheet
}

func openXLS(file string) (*xlsWorkbook, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	workbook, err := xls.OpenReader(f, "utf-8")
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error opening %v (%w)", file, err)
	} else if workbook == nil {
		f.Close()
		return nil, fmt.Errorf("error opening %v (no Workbook stream)", file)
	}

	return &xlsWorkbook{
		workbook: workbook,
		file:     f,
	}, nil
}

func (w *xlsWorkbook) Sheets() int {
	return w.workbook.NumSheets()
}

func (w *xlsWorkbook) Sheet(index int) (Sheet, error) {
	if index < 0 || index >= w.workbook.NumSheets() {
		return nil, fmt.Errorf("workbook has no worksheet %v", index+1)
	}

	sheet := w.workbook.GetSheet(index)
	if sheet == nil {
		return nil, fmt.Errorf("unable to read worksheet %v", index+1)
	}

	return &xlsSheet{sheet}, nil
}

func (w *xlsWorkbook) Close() error {
	return w.file.Close()
}

func (s *xlsSheet) Name() string {
	return s.sheet.Name
}

// MaxRow is the index of the last row, so an empty sheet and a sheet with a single row both
// report 0.
func (s *xlsSheet) Rows() int {
	if s.sheet.MaxRow == 0 && s.row(0) == nil {
		return 0
	}

	return int(s.sheet.MaxRow) + 1
}

func (s *xlsSheet) Cell(row, col int) string {
	if r := s.row(row); r != nil {
		return clean(r.Col(col))
	}

	return ""
}

// WorkSheet.Row panics for a row without any cells.
func (s *xlsSheet) row(index int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()

	return s.sheet.Row(index)
}
