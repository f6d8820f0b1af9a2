package table

import (
	"fmt"
	"math"
	"time"

	"github.com/volatiletech/null"
)

// New returns a frame over index and columns with every cell missing
func New(index []time.Time, columns []string) (*Frame, error) {
	if err := ValidateIndex(index); err != nil {
		return nil, err
	}
	lookup, err := validateColumns(columns)
	if err != nil {
		return nil, err
	}
	f := &Frame{
		index:   index,
		columns: append([]string(nil), columns...),
		lookup:  lookup,
		data:    make([][]float64, len(columns)),
	}
	for i := range f.data {
		f.data[i] = nanSlice(len(index))
	}
	return f, nil
}

// NewFromColumns returns a frame holding a copy of data, where data[i] is the
// column named columns[i]
func NewFromColumns(index []time.Time, columns []string, data [][]float64) (*Frame, error) {
	if len(data) != len(columns) {
		return nil, fmt.Errorf("%w: %d columns, %d data slices", ErrDataLength, len(columns), len(data))
	}
	f, err := New(index, columns)
	if err != nil {
		return nil, err
	}
	for i := range data {
		if len(data[i]) != len(index) {
			return nil, fmt.Errorf("%w: column %v has %d values, index has %d",
				ErrDataLength, columns[i], len(data[i]), len(index))
		}
		copy(f.data[i], data[i])
	}
	return f, nil
}

// ValidateIndex ensures the index is strictly increasing, which also
// guarantees uniqueness
func ValidateIndex(index []time.Time) error {
	for i := 1; i < len(index); i++ {
		if !index[i].After(index[i-1]) {
			return fmt.Errorf("%w: %v at position %d follows %v",
				ErrIndexNotIncreasing, index[i], i, index[i-1])
		}
	}
	return nil
}

func validateColumns(columns []string) (map[string]int, error) {
	lookup := make(map[string]int, len(columns))
	for i := range columns {
		if _, ok := lookup[columns[i]]; ok {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateColumn, columns[i])
		}
		lookup[columns[i]] = i
	}
	return lookup, nil
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// Index returns the frame's time index. The slice is shared and must not be
// modified
func (f *Frame) Index() []time.Time {
	return f.index
}

// Columns returns a copy of the column labels
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.index)
}

// Width returns the number of columns
func (f *Frame) Width() int {
	return len(f.columns)
}

// ColumnIndex returns the position of the named column
func (f *Frame) ColumnIndex(name string) (int, bool) {
	i, ok := f.lookup[name]
	return i, ok
}

// Column returns a copy of the named column
func (f *Frame) Column(name string) ([]float64, error) {
	i, ok := f.lookup[name]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrColumnNotFound, name)
	}
	return append([]float64(nil), f.data[i]...), nil
}

// At returns the cell at row and column position, NaN when missing
func (f *Frame) At(row, col int) float64 {
	return f.data[col][row]
}

// Set sets the cell at row and column position
func (f *Frame) Set(row, col int, v float64) {
	f.data[col][row] = v
}

// Get returns the cell at time t for the named column. Cells outside the frame
// and missing cells are returned as invalid
func (f *Frame) Get(t time.Time, column string) null.Float64 {
	col, ok := f.lookup[column]
	if !ok {
		return null.Float64{}
	}
	row := f.RowOf(t)
	if row < 0 || math.IsNaN(f.data[col][row]) {
		return null.Float64{}
	}
	return null.Float64From(f.data[col][row])
}

// RowOf returns the row position of t or -1
func (f *Frame) RowOf(t time.Time) int {
	lo, hi := 0, len(f.index)
	for lo < hi {
		mid := (lo + hi) / 2
		if f.index[mid].Before(t) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(f.index) && f.index[lo].Equal(t) {
		return lo
	}
	return -1
}

// Clone returns a deep copy of the frame. The index is shared as it is never
// modified in place
func (f *Frame) Clone() *Frame {
	c := &Frame{
		index:   f.index,
		columns: f.columns,
		lookup:  f.lookup,
		data:    make([][]float64, len(f.data)),
	}
	for i := range f.data {
		c.data[i] = append([]float64(nil), f.data[i]...)
	}
	return c
}

// emptyLike returns a frame with the same labels and every cell missing
func (f *Frame) emptyLike() *Frame {
	c := &Frame{
		index:   f.index,
		columns: f.columns,
		lookup:  f.lookup,
		data:    make([][]float64, len(f.data)),
	}
	for i := range c.data {
		c.data[i] = nanSlice(len(f.index))
	}
	return c
}

// Full returns a frame with the same labels where every cell is v
func (f *Frame) Full(v float64) *Frame {
	c := f.emptyLike()
	for i := range c.data {
		for j := range c.data[i] {
			c.data[i][j] = v
		}
	}
	return c
}

// Map applies fn to every cell
func (f *Frame) Map(fn func(float64) float64) *Frame {
	return f.MapIndexed(func(_, _ int, v float64) float64 { return fn(v) })
}

// MapIndexed applies fn to every cell with its row and column position
func (f *Frame) MapIndexed(fn func(row, col int, v float64) float64) *Frame {
	c := f.emptyLike()
	for i := range f.data {
		for j := range f.data[i] {
			c.data[i][j] = fn(j, i, f.data[i][j])
		}
	}
	return c
}

// Abs returns the absolute value of every cell
func (f *Frame) Abs() *Frame {
	return f.Map(math.Abs)
}

// Sign returns -1, 0 or 1 per cell, keeping missing cells missing
func (f *Frame) Sign() *Frame {
	return f.Map(Sign)
}

// Sign returns -1, 0 or 1, or NaN for NaN
func Sign(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return v
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Scale multiplies every cell by k
func (f *Frame) Scale(k float64) *Frame {
	return f.Map(func(v float64) float64 { return v * k })
}

// Shift moves every column down by periods rows (up when negative), filling
// the vacated rows with missing values
func (f *Frame) Shift(periods int) *Frame {
	c := f.emptyLike()
	n := len(f.index)
	for i := range f.data {
		for j := 0; j < n; j++ {
			src := j - periods
			if src < 0 || src >= n {
				continue
			}
			c.data[i][j] = f.data[i][src]
		}
	}
	return c
}

// Diff returns the change of every cell against the previous row
func (f *Frame) Diff() *Frame {
	c := f.emptyLike()
	for i := range f.data {
		for j := 1; j < len(f.index); j++ {
			c.data[i][j] = f.data[i][j] - f.data[i][j-1]
		}
	}
	return c
}

// FFill forward fills missing cells with the last valid value. At most limit
// consecutive missing cells are filled; NoLimit fills without bound
func (f *Frame) FFill(limit int) *Frame {
	return f.FFillSpans(limit, []Span{{Start: 0, End: len(f.index)}})
}

// FFillSpans forward fills like FFill without carrying values across span
// boundaries. Rows outside every span are left untouched
func (f *Frame) FFillSpans(limit int, spans []Span) *Frame {
	c := f.Clone()
	if limit == 0 {
		return c
	}
	for i := range c.data {
		col := c.data[i]
		for _, s := range spans {
			last := math.NaN()
			run := 0
			for j := s.Start; j < s.End; j++ {
				if !math.IsNaN(col[j]) {
					last = col[j]
					run = 0
					continue
				}
				if math.IsNaN(last) {
					continue
				}
				run++
				if limit > 0 && run > limit {
					continue
				}
				col[j] = last
			}
		}
	}
	return c
}

// CheckCongruent returns ErrShapeMismatch unless both frames share an equal
// index and identical ordered columns
func CheckCongruent(a, b *Frame) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: nil frame", ErrShapeMismatch)
	}
	if !indexEqual(a.index, b.index) {
		return fmt.Errorf("%w: index of %d rows vs %d rows", ErrShapeMismatch, len(a.index), len(b.index))
	}
	if len(a.columns) != len(b.columns) {
		return fmt.Errorf("%w: %d columns vs %d columns", ErrShapeMismatch, len(a.columns), len(b.columns))
	}
	for i := range a.columns {
		if a.columns[i] != b.columns[i] {
			return fmt.Errorf("%w: column %d is %v vs %v", ErrShapeMismatch, i, a.columns[i], b.columns[i])
		}
	}
	return nil
}

func indexEqual(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Combine applies fn cell by cell to two congruent frames
func Combine(a, b *Frame, fn func(x, y float64) float64) (*Frame, error) {
	if err := CheckCongruent(a, b); err != nil {
		return nil, err
	}
	c := a.emptyLike()
	for i := range a.data {
		for j := range a.data[i] {
			c.data[i][j] = fn(a.data[i][j], b.data[i][j])
		}
	}
	return c, nil
}

// Add returns f + o
func (f *Frame) Add(o *Frame) (*Frame, error) {
	return Combine(f, o, func(x, y float64) float64 { return x + y })
}

// Sub returns f - o
func (f *Frame) Sub(o *Frame) (*Frame, error) {
	return Combine(f, o, func(x, y float64) float64 { return x - y })
}

// Mul returns f * o
func (f *Frame) Mul(o *Frame) (*Frame, error) {
	return Combine(f, o, func(x, y float64) float64 { return x * y })
}

// Div returns f / o
func (f *Frame) Div(o *Frame) (*Frame, error) {
	return Combine(f, o, func(x, y float64) float64 { return x / y })
}

// RowSum sums every row ignoring missing cells. Rows with fewer than minCount
// valid cells sum to NaN, so a minCount of 1 keeps "no data" distinct from
// "zero activity"
func (f *Frame) RowSum(minCount int) []float64 {
	resp := make([]float64, len(f.index))
	for j := range f.index {
		var sum float64
		var count int
		for i := range f.data {
			if v := f.data[i][j]; !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count < minCount {
			resp[j] = math.NaN()
			continue
		}
		resp[j] = sum
	}
	return resp
}

// RowCount returns the number of valid cells per row
func (f *Frame) RowCount() []int {
	resp := make([]int, len(f.index))
	for j := range f.index {
		for i := range f.data {
			if !math.IsNaN(f.data[i][j]) {
				resp[j]++
			}
		}
	}
	return resp
}

// FirstValidRow returns the first row holding any valid cell or -1
func (f *Frame) FirstValidRow() int {
	counts := f.RowCount()
	for j := range counts {
		if counts[j] > 0 {
			return j
		}
	}
	return -1
}

// ActiveRows returns the positions of rows holding any valid cell
func (f *Frame) ActiveRows() []int {
	counts := f.RowCount()
	resp := make([]int, 0, len(counts))
	for j := range counts {
		if counts[j] > 0 {
			resp = append(resp, j)
		}
	}
	return resp
}

// SelectRows returns the rows at the supplied increasing positions
func (f *Frame) SelectRows(rows []int) *Frame {
	idx := make([]time.Time, len(rows))
	for k, r := range rows {
		idx[k] = f.index[r]
	}
	c := &Frame{
		index:   idx,
		columns: f.columns,
		lookup:  f.lookup,
		data:    make([][]float64, len(f.data)),
	}
	for i := range f.data {
		c.data[i] = make([]float64, len(rows))
		for k, r := range rows {
			c.data[i][k] = f.data[i][r]
		}
	}
	return c
}

// SliceRows returns rows [start, end), clamped to the frame
func (f *Frame) SliceRows(start, end int) *Frame {
	start = max(0, min(start, len(f.index)))
	end = max(start, min(end, len(f.index)))
	rows := make([]int, 0, end-start)
	for j := start; j < end; j++ {
		rows = append(rows, j)
	}
	return f.SelectRows(rows)
}

// Reindex conforms the frame to a new index; rows absent from the frame are
// missing
func (f *Frame) Reindex(index []time.Time) (*Frame, error) {
	if err := ValidateIndex(index); err != nil {
		return nil, err
	}
	c := &Frame{
		index:   index,
		columns: f.columns,
		lookup:  f.lookup,
		data:    make([][]float64, len(f.data)),
	}
	src := make([]int, len(index))
	for k := range index {
		src[k] = f.RowOf(index[k])
	}
	for i := range f.data {
		c.data[i] = nanSlice(len(index))
		for k, r := range src {
			if r >= 0 {
				c.data[i][k] = f.data[i][r]
			}
		}
	}
	return c, nil
}

// ReindexColumns conforms the frame to a new ordered column set; columns
// absent from the frame are missing
func (f *Frame) ReindexColumns(columns []string) (*Frame, error) {
	c, err := New(f.index, columns)
	if err != nil {
		return nil, err
	}
	for i := range columns {
		if src, ok := f.lookup[columns[i]]; ok {
			copy(c.data[i], f.data[src])
		}
	}
	return c, nil
}

// RenameColumns relabels every column through fn
func (f *Frame) RenameColumns(fn func(string) (string, error)) (*Frame, error) {
	cols := make([]string, len(f.columns))
	for i := range f.columns {
		var err error
		cols[i], err = fn(f.columns[i])
		if err != nil {
			return nil, err
		}
	}
	return NewFromColumns(f.index, cols, f.data)
}

// Equal reports whether both frames are congruent and every cell matches
// within tolerance, treating two missing cells as equal
func (f *Frame) Equal(o *Frame, tolerance float64) bool {
	if CheckCongruent(f, o) != nil {
		return false
	}
	for i := range f.data {
		for j := range f.data[i] {
			a, b := f.data[i][j], o.data[i][j]
			if math.IsNaN(a) || math.IsNaN(b) {
				if math.IsNaN(a) != math.IsNaN(b) {
					return false
				}
				continue
			}
			if math.Abs(a-b) > tolerance {
				return false
			}
		}
	}
	return true
}
