package diasend

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apperr "github.com/diatide/diatide/errors"
	"github.com/diatide/diatide/glucose"
)

// Layout of a Diasend export: the first worksheet has the blood glucose meter readings after a
// five row header, the second worksheet has the CGM readings after a two row header.
const (
	METER_SHEET     = 0
	METER_FIRST_ROW = 5
	CGM_SHEET       = 1
	CGM_FIRST_ROW   = 2

	TIMESTAMP_COLUMN = 0
	GLUCOSE_COLUMN   = 1
)

// Extract reads the meter (SMBG) and CGM readings from a Diasend export. Rows with a timestamp
// or glucose value that cannot be parsed are logged and skipped. Readings are returned in
// worksheet row order.
func Extract(workbook Workbook, format string, log *zap.Logger) ([]glucose.Reading, []glucose.Reading, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if n := workbook.Sheets(); n < 2 {
		return nil, nil, fmt.Errorf("expected meter and CGM worksheets, workbook has %v worksheet(s)", n)
	}

	sheet, err := workbook.Sheet(METER_SHEET)
	if err != nil {
		return nil, nil, err
	}

	meter := extract(sheet, METER_FIRST_ROW, format, log)

	if sheet, err = workbook.Sheet(CGM_SHEET); err != nil {
		return nil, nil, err
	}

	cgm := extract(sheet, CGM_FIRST_ROW, format, log)

	log.Info("extracted readings", zap.Int("meter", len(meter)), zap.Int("cgm", len(cgm)))

	return meter, cgm, nil
}

func extract(sheet Sheet, first int, format string, log *zap.Logger) []glucose.Reading {
	readings := []glucose.Reading{}

	for row := first; row < sheet.Rows(); row++ {
		timestamp := sheet.Cell(row, TIMESTAMP_COLUMN)
		t, err := ParseTimestamp(timestamp, format)
		if err != nil {
			skip(log, sheet, row, "error parsing timestamp", err)
			continue
		}

		v, err := parseGlucose(sheet.Cell(row, GLUCOSE_COLUMN))
		if err != nil {
			skip(log, sheet, row, "error parsing glucose value", err)
			continue
		}

		readings = append(readings, glucose.Reading{
			Timestamp: t,
			Value:     v,
		})
	}

	return readings
}

// Some Diasend locales export glucose values with a decimal comma.
func parseGlucose(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(clean(value), ",", "."), 64)
	if err != nil {
		return 0, apperr.NewParseError(value, err)
	}

	return v, nil
}

func skip(log *zap.Logger, sheet Sheet, row int, msg string, err error) {
	fields := append([]zap.Field{
		zap.String("sheet", sheet.Name()),
		zap.Int("row", row+1),
	}, apperr.Fields(err)...)

	log.Warn(msg+"; skipping record", fields...)
}
