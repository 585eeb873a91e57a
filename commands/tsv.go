package commands

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/diatide/diatide/diasend"
	"github.com/diatide/diatide/glucose"
)

func readingsToTSV(f io.Writer, meter, cgm []glucose.Reading, format string) error {
	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write([]string{"Type", "Timestamp", "Glucose", "Units"}); err != nil {
		return err
	}

	for _, list := range []struct {
		kind     glucose.Kind
		readings []glucose.Reading
	}{
		{glucose.SMBG, meter},
		{glucose.CBG, cgm},
	} {
		for _, r := range list.readings {
			timestamp, err := diasend.FormatTimestamp(r.Timestamp, format)
			if err != nil {
				return err
			}

			record := []string{
				string(list.kind),
				timestamp,
				strconv.FormatFloat(r.Value, 'f', -1, 64),
				glucose.Units,
			}

			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	w.Flush()

	return w.Error()
}
