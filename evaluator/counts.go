package evaluator

import (
	"fmt"
	"sort"

	prettytable "github.com/jedib0t/go-pretty/v6/table"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/table"
)

// ComputeCounts returns the number of valid cells of every configured field
// present in df, grouped by the time of day of each bar
func (e *ForecastEvaluator) ComputeCounts(df *table.MultiFrame) (*Counts, error) {
	if df == nil {
		return nil, common.ErrNilArguments
	}
	idx := df.Index()
	slot := make(map[string]int)
	var times []string
	for j := range idx {
		tod := idx[j].Format(timeOfDayFormat)
		if _, ok := slot[tod]; !ok {
			slot[tod] = 0
			times = append(times, tod)
		}
	}
	sort.Strings(times)
	for i := range times {
		slot[times[i]] = i
	}

	resp := &Counts{
		TimesOfDay: times,
		Values:     make(map[string][]int),
	}
	for _, name := range e.GetCols() {
		if !df.HasField(name) {
			continue
		}
		f, err := df.Field(name)
		if err != nil {
			return nil, err
		}
		counts := make([]int, len(times))
		for j, n := range f.RowCount() {
			counts[slot[idx[j].Format(timeOfDayFormat)]] += n
		}
		resp.Fields = append(resp.Fields, name)
		resp.Values[name] = counts
	}
	return resp, nil
}

// String renders the counts as a table with one row per time of day
func (c *Counts) String() string {
	tw := prettytable.NewWriter()
	tw.SetStyle(prettytable.StyleLight)
	header := prettytable.Row{"time"}
	for _, f := range c.Fields {
		header = append(header, f)
	}
	tw.AppendHeader(header)
	for i, tod := range c.TimesOfDay {
		row := prettytable.Row{tod}
		for _, f := range c.Fields {
			row = append(row, c.Values[f][i])
		}
		tw.AppendRow(row)
	}
	tw.SetCaption(fmt.Sprintf("%d times of day", len(c.TimesOfDay)))
	return tw.Render()
}
