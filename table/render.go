package table

import (
	"math"
	"strconv"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/thrasher-corp/forecaster/common"
)

// RenderOptions controls text rendering of frames
type RenderOptions struct {
	Title string
	// Precision is the number of decimals printed, negative prints the
	// shortest round-trip form
	Precision int
	// MaxRows truncates the output to the first and last MaxRows/2 bars,
	// zero renders every bar
	MaxRows int
}

// Render returns a human readable table of the frame
func Render(f *Frame, opts RenderOptions) string {
	if f == nil {
		return ""
	}
	tw := prettytable.NewWriter()
	tw.SetStyle(prettytable.StyleLight)
	if opts.Title != "" {
		tw.SetTitle(opts.Title)
	}
	header := prettytable.Row{IndexLabel}
	configs := make([]prettytable.ColumnConfig, 0, len(f.columns))
	for i := range f.columns {
		header = append(header, f.columns[i])
		configs = append(configs, prettytable.ColumnConfig{Number: i + 2, Align: text.AlignRight})
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	rows := visibleRows(f.Len(), opts.MaxRows)
	for k, j := range rows {
		if k > 0 && j != rows[k-1]+1 {
			tw.AppendSeparator()
		}
		row := prettytable.Row{f.index[j].Format(common.SimpleTimeFormat)}
		for i := range f.columns {
			row = append(row, formatCell(f.data[i][j], opts.Precision))
		}
		tw.AppendRow(row)
	}
	return tw.Render()
}

// RenderMulti renders every field of m as its own titled table
func RenderMulti(m *MultiFrame, opts RenderOptions) string {
	if m == nil {
		return ""
	}
	var resp string
	for i, name := range m.fields {
		if i > 0 {
			resp += "\n"
		}
		o := opts
		o.Title = name
		resp += Render(m.frames[name], o)
	}
	return resp
}

func visibleRows(n, maxRows int) []int {
	rows := make([]int, 0, n)
	if maxRows <= 0 || n <= maxRows {
		for j := 0; j < n; j++ {
			rows = append(rows, j)
		}
		return rows
	}
	head := (maxRows + 1) / 2
	for j := 0; j < head; j++ {
		rows = append(rows, j)
	}
	for j := n - (maxRows - head); j < n; j++ {
		rows = append(rows, j)
	}
	return rows
}

func formatCell(v float64, precision int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if precision < 0 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}
