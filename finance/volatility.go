package finance

import (
	"fmt"
	"math"

	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/table"
)

// EstimateVolatility returns the square root of an exponential moving average
// of squared bar returns per instrument. The average restarts after every
// missing return and is NaN until period returns have been observed
func EstimateVolatility(price *table.Frame, period int) (*table.Frame, error) {
	if price == nil {
		return nil, common.ErrNilArguments
	}
	if period <= 0 {
		return nil, fmt.Errorf("estimate volatility %w", errInvalidPeriod)
	}
	squared := price.MapIndexed(func(row, col int, p float64) float64 {
		if row == 0 {
			return math.NaN()
		}
		prev := price.At(row-1, col)
		if prev == 0 {
			return math.NaN()
		}
		r := p/prev - 1
		return r * r
	})
	vol := squared.Full(math.NaN())
	for col := 0; col < squared.Width(); col++ {
		for _, s := range validRuns(squared, col) {
			if s.End-s.Start < period {
				continue
			}
			segment := make([]float64, 0, s.End-s.Start)
			for row := s.Start; row < s.End; row++ {
				segment = append(segment, squared.At(row, col))
			}
			ema := indicators.EMA(segment, period)
			for k := period - 1; k < len(ema); k++ {
				vol.Set(s.Start+k, col, math.Sqrt(ema[k]))
			}
		}
	}
	return vol, nil
}

// validRuns returns the contiguous runs of valid cells in a column
func validRuns(f *table.Frame, col int) []table.Span {
	var runs []table.Span
	start := -1
	for row := 0; row < f.Len(); row++ {
		valid := !math.IsNaN(f.At(row, col))
		switch {
		case valid && start < 0:
			start = row
		case !valid && start >= 0:
			runs = append(runs, table.Span{Start: start, End: row})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, table.Span{Start: start, End: f.Len()})
	}
	return runs
}
