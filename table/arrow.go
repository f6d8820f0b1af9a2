package table

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
)

const (
	arrowFieldKey      = "field"
	arrowInstrumentKey = "instrument"
)

// arrowSchema flattens the two level column space into one float64 column
// per (field, instrument) pair, labelled through field metadata
func (m *MultiFrame) arrowSchema() *arrow.Schema {
	loc := time.UTC
	if len(m.index) > 0 {
		loc = m.index[0].Location()
	}
	fields := []arrow.Field{{
		Name: IndexLabel,
		Type: &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: loc.String()},
	}}
	for _, name := range m.fields {
		for _, c := range m.frames[name].columns {
			fields = append(fields, arrow.Field{
				Name:     name + "/" + c,
				Type:     arrow.PrimitiveTypes.Float64,
				Nullable: true,
				Metadata: arrow.NewMetadata(
					[]string{arrowFieldKey, arrowInstrumentKey},
					[]string{name, c}),
			})
		}
	}
	return arrow.NewSchema(fields, nil)
}

// WriteArrow writes the MultiFrame to w as a single record Arrow IPC stream.
// Missing cells are written as nulls
func WriteArrow(w io.Writer, m *MultiFrame) error {
	if m == nil {
		return errNilFrame
	}
	mem := memory.NewGoAllocator()
	schema := m.arrowSchema()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	tb := b.Field(0).(*array.TimestampBuilder)
	for j := range m.index {
		tb.Append(arrow.Timestamp(m.index[j].UnixNano()))
	}
	col := 1
	for _, name := range m.fields {
		f := m.frames[name]
		for i := range f.columns {
			valid := make([]bool, len(f.index))
			for j, v := range f.data[i] {
				valid[j] = !math.IsNaN(v)
			}
			b.Field(col).(*array.Float64Builder).AppendValues(f.data[i], valid)
			col++
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		_ = iw.Close()
		return err
	}
	return iw.Close()
}

// ReadArrow reads a MultiFrame written by WriteArrow. Every record batch in
// the stream is appended in order
func ReadArrow(r io.Reader) (*MultiFrame, error) {
	mem := memory.NewGoAllocator()
	ir, err := ipc.NewReader(r, ipc.WithAllocator(mem))
	if err != nil {
		return nil, err
	}
	defer ir.Release()

	schema := ir.Schema()
	if schema.NumFields() == 0 || schema.Field(0).Name != IndexLabel {
		return nil, fmt.Errorf("%w: first column must be %q", errMalformedArrow, IndexLabel)
	}
	tsType, ok := schema.Field(0).Type.(*arrow.TimestampType)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %v", errMalformedArrow, IndexLabel, schema.Field(0).Type)
	}
	loc := time.UTC
	if tsType.TimeZone != "" {
		if loc, err = time.LoadLocation(tsType.TimeZone); err != nil {
			return nil, fmt.Errorf("%w: %w", errMalformedArrow, err)
		}
	}

	type label struct{ field, instrument string }
	labels := make([]label, schema.NumFields())
	for i := 1; i < schema.NumFields(); i++ {
		md := schema.Field(i).Metadata
		fi, ii := md.FindKey(arrowFieldKey), md.FindKey(arrowInstrumentKey)
		if fi < 0 || ii < 0 {
			return nil, fmt.Errorf("%w: column %v missing labels", errMalformedArrow, schema.Field(i).Name)
		}
		labels[i] = label{field: md.Values()[fi], instrument: md.Values()[ii]}
	}

	var index []time.Time
	values := make([][]float64, schema.NumFields())
	for ir.Next() {
		rec := ir.Record()
		ts, ok := rec.Column(0).(*array.Timestamp)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected index array %T", errMalformedArrow, rec.Column(0))
		}
		for j := 0; j < ts.Len(); j++ {
			index = append(index, time.Unix(0, int64(ts.Value(j))).In(loc))
		}
		for i := 1; i < int(rec.NumCols()); i++ {
			col, ok := rec.Column(i).(*array.Float64)
			if !ok {
				return nil, fmt.Errorf("%w: unexpected value array %T", errMalformedArrow, rec.Column(i))
			}
			for j := 0; j < col.Len(); j++ {
				if col.IsNull(j) {
					values[i] = append(values[i], math.NaN())
					continue
				}
				values[i] = append(values[i], col.Value(j))
			}
		}
	}
	if err := ir.Err(); err != nil {
		return nil, err
	}

	m, err := NewMultiFrame(index)
	if err != nil {
		return nil, err
	}
	var order []string
	columns := make(map[string][]string)
	data := make(map[string][][]float64)
	for i := 1; i < len(labels); i++ {
		l := labels[i]
		if _, ok := columns[l.field]; !ok {
			order = append(order, l.field)
		}
		columns[l.field] = append(columns[l.field], l.instrument)
		v := values[i]
		if v == nil {
			v = []float64{}
		}
		data[l.field] = append(data[l.field], v)
	}
	for _, name := range order {
		f, err := NewFromColumns(index, columns[name], data[name])
		if err != nil {
			return nil, fmt.Errorf("field %v: %w", name, err)
		}
		if err := m.AddField(name, f); err != nil {
			return nil, err
		}
	}
	return m, nil
}
