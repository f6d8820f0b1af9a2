package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/common/convert"
)

// csvTimeFormat trims trailing zero fractions so whole second bars render as
// common.SimpleTimeFormat
const csvTimeFormat = "2006-01-02 15:04:05.999999999"

// CSVRecords renders the frame as CSV rows; a header of IndexLabel followed by
// the column labels, then one row per bar with wall clock timestamps in the
// index location. Missing cells are empty
func (f *Frame) CSVRecords() [][]string {
	resp := make([][]string, 0, len(f.index)+1)
	header := make([]string, 0, len(f.columns)+1)
	header = append(header, IndexLabel)
	header = append(header, f.columns...)
	resp = append(resp, header)
	for j := range f.index {
		row := make([]string, 0, len(f.columns)+1)
		row = append(row, f.index[j].Format(csvTimeFormat))
		for i := range f.columns {
			row = append(row, convert.FloatToString(f.data[i][j]))
		}
		resp = append(resp, row)
	}
	return resp
}

// WriteCSV writes the frame as CSV to w
func WriteCSV(w io.Writer, f *Frame) error {
	if f == nil {
		return errNilFrame
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(f.CSVRecords()); err != nil {
		return err
	}
	return cw.Error()
}

// ReadCSV parses a frame written by WriteCSV, localising wall clock
// timestamps to loc. A nil loc is UTC
func ReadCSV(r io.Reader, loc *time.Location) (*Frame, error) {
	if loc == nil {
		loc = time.UTC
	}
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", errMalformedCSV)
		}
		return nil, err
	}
	if len(header) == 0 || header[0] != IndexLabel {
		return nil, fmt.Errorf("%w: first header cell must be %q", errMalformedCSV, IndexLabel)
	}
	columns := header[1:]
	var index []time.Time
	data := make([][]float64, len(columns))
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		t, err := time.ParseInLocation(common.SimpleTimeFormat, row[0], loc)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", errMalformedCSV, line, err)
		}
		index = append(index, t)
		for i := range columns {
			v, err := convert.FloatFromString(row[i+1])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %v: %w", errMalformedCSV, line, columns[i], err)
			}
			data[i] = append(data[i], v)
		}
	}
	for i := range data {
		if data[i] == nil {
			data[i] = []float64{}
		}
	}
	return NewFromColumns(index, columns, data)
}
