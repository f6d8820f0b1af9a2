package finance

import (
	"fmt"
	"math"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/table"
)

// InferSplitFactors detects overnight share splits from price
// discontinuities. The factor is set on the first bar of every day and is the
// ratio of the prior day's last valid price to the day's first price when that
// ratio is within tolerance of an integer n >= 2 (an n:1 split, factor n) or
// of its reciprocal (a 1:n reverse split, factor 1/n). Every other cell is 1
func InferSplitFactors(price *table.Frame, tolerance float64) (*table.Frame, error) {
	if price == nil {
		return nil, common.ErrNilArguments
	}
	if tolerance <= 0 || tolerance >= 1 {
		return nil, fmt.Errorf("%w: %v", errInvalidTolerance, tolerance)
	}
	factors := price.Full(1)
	spans := table.DaySpans(price.Index())
	for col := 0; col < price.Width(); col++ {
		prevClose := math.NaN()
		for _, s := range spans {
			open := price.At(s.Start, col)
			if !math.IsNaN(prevClose) && !math.IsNaN(open) && open > 0 && prevClose > 0 {
				factors.Set(s.Start, col, splitFactor(prevClose/open, tolerance))
			}
			for row := s.End - 1; row >= s.Start; row-- {
				if v := price.At(row, col); !math.IsNaN(v) {
					prevClose = v
					break
				}
			}
		}
	}
	return factors, nil
}

func splitFactor(ratio, tolerance float64) float64 {
	if n := math.Round(ratio); n >= 2 && math.Abs(ratio-n) <= tolerance*n {
		return n
	}
	inv := 1 / ratio
	if n := math.Round(inv); n >= 2 && math.Abs(inv-n) <= tolerance*n {
		return 1 / n
	}
	return 1
}
