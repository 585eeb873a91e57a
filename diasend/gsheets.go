package diasend

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/sheets/v4"
)

// GoogleWorkbook is a Diasend export that has been imported into Google Sheets. The worksheet
// values are retrieved once, when the workbook is opened.
type GoogleWorkbook struct {
	tables []*table
}

// NewGoogleWorkbook retrieves all the worksheets of a Google Sheets spreadsheet with a single
// batch request.
func NewGoogleWorkbook(ctx context.Context, google *sheets.Service, spreadsheetID string) (*GoogleWorkbook, error) {
	spreadsheet, err := google.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spreadsheet (%w)", err)
	}

	ranges := []string{}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			ranges = append(ranges, quote(sheet.Properties.Title))
		}
	}

	if len(ranges) == 0 {
		return nil, fmt.Errorf("spreadsheet %v has no worksheets", spreadsheetID)
	}

	response, err := google.Spreadsheets.Values.BatchGet(spreadsheetID).Ranges(ranges...).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from spreadsheet (%w)", err)
	}

	return ValueRanges(response.ValueRanges...), nil
}

// ValueRanges builds a workbook from Google Sheets value ranges, one worksheet per range.
func ValueRanges(ranges ...*sheets.ValueRange) *GoogleWorkbook {
	workbook := GoogleWorkbook{
		tables: []*table{},
	}

	for _, r := range ranges {
		t := table{
			name: sheetName(r.Range),
			rows: make([][]string, len(r.Values)),
		}

		for i, row := range r.Values {
			t.rows[i] = make([]string, len(row))
			for j, v := range row {
				if v != nil {
					t.rows[i][j] = fmt.Sprintf("%v", v)
				}
			}
		}

		workbook.tables = append(workbook.tables, &t)
	}

	return &workbook
}

func (w *GoogleWorkbook) Sheets() int {
	return len(w.tables)
}

func (w *GoogleWorkbook) Sheet(index int) (Sheet, error) {
	if index < 0 || index >= len(w.tables) {
		return nil, fmt.Errorf("workbook has no worksheet %v", index+1)
	}

	return w.tables[index], nil
}

func (w *GoogleWorkbook) Close() error {
	return nil
}

func quote(title string) string {
	return fmt.Sprintf("'%s'", strings.ReplaceAll(title, "'", "''"))
}

func sheetName(area string) string {
	name := area
	if match := regexp.MustCompile(`(.+?)!.*`).FindStringSubmatch(area); len(match) > 1 {
		name = match[1]
	}

	if strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") && len(name) > 1 {
		name = strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}

	return name
}
