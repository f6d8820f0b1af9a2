package table

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// NewMultiFrame returns an empty MultiFrame over index
func NewMultiFrame(index []time.Time) (*MultiFrame, error) {
	if err := ValidateIndex(index); err != nil {
		return nil, err
	}
	return &MultiFrame{
		index:  index,
		frames: make(map[string]*Frame),
	}, nil
}

// AddField stores f under name. The frame must share the MultiFrame's index
func (m *MultiFrame) AddField(name string, f *Frame) error {
	if _, ok := m.frames[name]; ok {
		return fmt.Errorf("%w: %v", errFieldExists, name)
	}
	return m.SetField(name, f)
}

// SetField stores f under name, replacing any existing field of that name
func (m *MultiFrame) SetField(name string, f *Frame) error {
	if name == "" {
		return errEmptyFieldName
	}
	if f == nil {
		return fmt.Errorf("%w: field %v", errNilFrame, name)
	}
	if !indexEqual(m.index, f.index) {
		return fmt.Errorf("%w: field %v index of %d rows vs %d rows",
			ErrShapeMismatch, name, len(f.index), len(m.index))
	}
	if _, ok := m.frames[name]; !ok {
		m.fields = append(m.fields, name)
	}
	m.frames[name] = f
	return nil
}

// Field returns the named field's frame
func (m *MultiFrame) Field(name string) (*Frame, error) {
	f, ok := m.frames[name]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrFieldNotFound, name)
	}
	return f, nil
}

// HasField reports whether the named field is present
func (m *MultiFrame) HasField(name string) bool {
	_, ok := m.frames[name]
	return ok
}

// Fields returns field names in insertion order
func (m *MultiFrame) Fields() []string {
	return append([]string(nil), m.fields...)
}

// Index returns the shared time index. The slice must not be modified
func (m *MultiFrame) Index() []time.Time {
	return m.index
}

// Len returns the number of rows
func (m *MultiFrame) Len() int {
	return len(m.index)
}

// Instruments returns the union of every field's columns in first seen order
func (m *MultiFrame) Instruments() []string {
	seen := make(map[string]struct{})
	var resp []string
	for _, name := range m.fields {
		for _, c := range m.frames[name].columns {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			resp = append(resp, c)
		}
	}
	return resp
}

// SelectFields returns a MultiFrame holding only the named fields in the
// supplied order
func (m *MultiFrame) SelectFields(names ...string) (*MultiFrame, error) {
	resp := &MultiFrame{index: m.index, frames: make(map[string]*Frame, len(names))}
	for _, name := range names {
		f, err := m.Field(name)
		if err != nil {
			return nil, err
		}
		if err := resp.AddField(name, f); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// AlignColumns conforms every field to the supplied instrument columns
func (m *MultiFrame) AlignColumns(columns []string) (*MultiFrame, error) {
	return m.transform(func(f *Frame) (*Frame, error) { return f.ReindexColumns(columns) }, m.index)
}

// SelectRows returns the rows at the supplied increasing positions
func (m *MultiFrame) SelectRows(rows []int) *MultiFrame {
	idx := make([]time.Time, len(rows))
	for k, r := range rows {
		idx[k] = m.index[r]
	}
	resp, _ := m.transform(func(f *Frame) (*Frame, error) { return f.SelectRows(rows), nil }, idx)
	return resp
}

// SliceRows returns rows [start, end), clamped to the frame
func (m *MultiFrame) SliceRows(start, end int) *MultiFrame {
	start = max(0, min(start, len(m.index)))
	end = max(start, min(end, len(m.index)))
	rows := make([]int, 0, end-start)
	for j := start; j < end; j++ {
		rows = append(rows, j)
	}
	return m.SelectRows(rows)
}

// Reindex conforms every field to a new index
func (m *MultiFrame) Reindex(index []time.Time) (*MultiFrame, error) {
	if err := ValidateIndex(index); err != nil {
		return nil, err
	}
	return m.transform(func(f *Frame) (*Frame, error) { return f.Reindex(index) }, index)
}

func (m *MultiFrame) transform(fn func(*Frame) (*Frame, error), index []time.Time) (*MultiFrame, error) {
	resp := &MultiFrame{
		index:  index,
		fields: append([]string(nil), m.fields...),
		frames: make(map[string]*Frame, len(m.fields)),
	}
	for _, name := range m.fields {
		f, err := fn(m.frames[name])
		if err != nil {
			return nil, fmt.Errorf("field %v: %w", name, err)
		}
		resp.frames[name] = f
	}
	return resp, nil
}

// Records flattens the MultiFrame into long format, skipping missing cells
func (m *MultiFrame) Records() []Record {
	return m.records(true)
}

// AllRecords flattens the MultiFrame into long format, keeping missing cells
// as NaN values
func (m *MultiFrame) AllRecords() []Record {
	return m.records(false)
}

func (m *MultiFrame) records(skipMissing bool) []Record {
	var resp []Record
	for _, name := range m.fields {
		f := m.frames[name]
		for j := range f.index {
			for i := range f.columns {
				v := f.data[i][j]
				if skipMissing && math.IsNaN(v) {
					continue
				}
				resp = append(resp, Record{
					Time:       f.index[j],
					Field:      name,
					Instrument: f.columns[i],
					Value:      v,
				})
			}
		}
	}
	return resp
}

// FromRecords builds a MultiFrame from long format cells. The index is the
// sorted set of record times, fields and instruments keep first seen order
// and every field spans every instrument
func FromRecords(records []Record) (*MultiFrame, error) {
	if len(records) == 0 {
		return nil, errNoRecordsInInput
	}
	times := make([]time.Time, 0, len(records))
	seenTime := make(map[int64]struct{})
	var fields, instruments []string
	seenField := make(map[string]struct{})
	seenInstrument := make(map[string]struct{})
	for i := range records {
		if _, ok := seenTime[records[i].Time.UnixNano()]; !ok {
			seenTime[records[i].Time.UnixNano()] = struct{}{}
			times = append(times, records[i].Time)
		}
		if _, ok := seenField[records[i].Field]; !ok {
			seenField[records[i].Field] = struct{}{}
			fields = append(fields, records[i].Field)
		}
		if _, ok := seenInstrument[records[i].Instrument]; !ok {
			seenInstrument[records[i].Instrument] = struct{}{}
			instruments = append(instruments, records[i].Instrument)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	m, err := NewMultiFrame(times)
	if err != nil {
		return nil, err
	}
	for _, name := range fields {
		f, err := New(times, instruments)
		if err != nil {
			return nil, err
		}
		if err := m.AddField(name, f); err != nil {
			return nil, err
		}
	}
	for i := range records {
		f := m.frames[records[i].Field]
		f.data[f.lookup[records[i].Instrument]][f.RowOf(records[i].Time)] = records[i].Value
	}
	return m, nil
}
