package diasend

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Sheet is a single worksheet of a Diasend export.
type Sheet interface {
	Name() string
	Rows() int
	Cell(row, col int) string
}

// Workbook is an opened Diasend export.
type Workbook interface {
	Sheets() int
	Sheet(index int) (Sheet, error)
	Close() error
}

// Open opens a Diasend export file, choosing the reader from the file extension.
func Open(file string) (Workbook, error) {
	var workbook Workbook
	var err error

	switch strings.ToLower(filepath.Ext(file)) {
	case ".xls":
		workbook, err = openXLS(file)

	case ".xlsx", ".xlsm":
		workbook, err = openXLSX(file)

	default:
		return nil, fmt.Errorf("unsupported spreadsheet format '%v' - expected .xls or .xlsx", filepath.Ext(file))
	}

	if err != nil {
		return nil, err
	}

	return workbook, nil
}

func clean(v string) string {
	return strings.TrimSpace(v)
}
