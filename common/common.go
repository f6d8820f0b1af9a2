package common

import "errors"

const (
	// SimpleTimeFormat a common, but non-implemented time format in golang
	SimpleTimeFormat = "2006-01-02 15:04:05"
	// LogFileTimeFormat is used to name timestamped portfolio log files
	LogFileTimeFormat = "20060102_150405"
	// DefaultTimezone is used to localise persisted timestamps when no
	// location is supplied
	DefaultTimezone = "America/New_York"
)

// ErrNilArguments is a common error response to highlight that nils were
// passed in when they should not have been
var ErrNilArguments = errors.New("received nil argument(s)")
