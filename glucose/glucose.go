package glucose

import (
	"fmt"
	"time"
)

// Units is the unit of every glucose value in a Diasend export.
const Units = "mmol/L"

// Kind identifies the Tidepool record type of a reading.
type Kind string

const (
	CBG  Kind = "cbg"
	SMBG Kind = "smbg"
)

// Reading is a single glucose measurement. Timestamp is the device wall clock time, without
// any zone information (the location is always UTC).
type Reading struct {
	Timestamp time.Time
	Value     float64
}

func (k Kind) Valid() bool {
	return k == CBG || k == SMBG
}

func (k Kind) String() string {
	return string(k)
}

func (r Reading) String() string {
	return fmt.Sprintf("%v  %.1f %v", r.Timestamp.Format("2006-01-02 15:04:05"), r.Value, Units)
}
