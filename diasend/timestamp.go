package diasend

import (
	"strings"
	"time"

	"github.com/knz/strtime"

	apperr "github.com/diatide/diatide/errors"
)

// DefaultDateFormat is the Diasend export timestamp format for most European locales.
const DefaultDateFormat = "%d/%m/%Y %H:%M"

// ParseTimestamp parses a Diasend timestamp cell using a strptime format. The returned time is a
// naive wall clock time i.e. it has no zone information (the location is UTC).
func ParseTimestamp(raw, format string) (time.Time, error) {
	value := strings.TrimSpace(raw)

	t, err := strtime.Strptime(value, format)
	if err != nil {
		return time.Time{}, apperr.NewParseError(raw, err).WithContext("format", format)
	}

	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
}

// FormatTimestamp renders a timestamp using a strptime format.
func FormatTimestamp(t time.Time, format string) (string, error) {
	return strtime.Strftime(t, format)
}
