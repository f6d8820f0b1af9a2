package table

import (
	"errors"
	"time"
)

// NoLimit disables the consecutive fill bound of FFill
const NoLimit = -1

// IndexLabel is the header of the time column in CSV output
const IndexLabel = "timestamp"

var (
	// ErrIndexNotIncreasing is returned when a time index is not strictly increasing
	ErrIndexNotIncreasing = errors.New("index is not strictly increasing")
	// ErrShapeMismatch is returned when frames do not share index and columns
	ErrShapeMismatch = errors.New("frame shape mismatch")
	// ErrDuplicateColumn is returned when a column label appears twice
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrColumnNotFound is returned when a column label is not present
	ErrColumnNotFound = errors.New("column not found")
	// ErrFieldNotFound is returned when a field is not present in a MultiFrame
	ErrFieldNotFound = errors.New("field not found")
	// ErrDataLength is returned when supplied data does not fit the labels
	ErrDataLength = errors.New("data length mismatch")

	errEmptyFieldName   = errors.New("field name cannot be empty")
	errFieldExists      = errors.New("field already exists")
	errMalformedCSV     = errors.New("malformed csv")
	errMalformedArrow   = errors.New("malformed arrow stream")
	errNilFrame         = errors.New("nil frame")
	errNoRecordsInInput = errors.New("no records in input")
)

// Frame is a two dimensional table of float64 values with a strictly
// increasing time index and unique instrument columns. Missing values are NaN
type Frame struct {
	index   []time.Time
	columns []string
	lookup  map[string]int
	// data is column major; data[col][row]
	data [][]float64
}

// MultiFrame groups frames sharing one time index under named fields,
// forming a two level column space of (field, instrument)
type MultiFrame struct {
	index  []time.Time
	fields []string
	frames map[string]*Frame
}

// Span is a half open row range [Start, End)
type Span struct {
	Start int
	End   int
}

// Record is a single long format cell used when moving between a
// MultiFrame and row oriented storage
type Record struct {
	Time       time.Time
	Field      string
	Instrument string
	Value      float64
}
