package model

import "strings"

// Format identifies a supported statement export format.
type Format string

const (
	FormatISO20022 Format = "ISO20022_XML"
	FormatSWIFT    Format = "SWIFT_TEXT"
	FormatNational Format = "NATIONAL_XML"
	FormatUnknown  Format = "UNKNOWN"
)

// Formats lists the recognizable formats in detection order.
var Formats = []Format{FormatISO20022, FormatSWIFT, FormatNational}

// ParseFormat maps a label to a Format. Unrecognized labels map to FormatUnknown.
func ParseFormat(s string) Format {
	f := Format(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f
		}
	}
	return FormatUnknown
}

// Label returns the diagnostic label; the empty format reads as UNKNOWN.
func (f Format) Label() string {
	if f == "" {
		return string(FormatUnknown)
	}
	return string(f)
}
