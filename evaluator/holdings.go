package evaluator

import (
	"fmt"
	"math"

	"github.com/thrasher-corp/forecaster/finance"
	"github.com/thrasher-corp/forecaster/log"
	"github.com/thrasher-corp/forecaster/table"
)

// idealHoldings delays target shares by one bar, assuming full fills. With
// liquidation every day starts and ends flat. Otherwise the first bar of a
// day carries the prior day's closing holdings adjusted for splits and gaps
// within a day are forward filled
func idealHoldings(shares, price *table.Frame, liquidate bool) (*table.Frame, error) {
	holdings := shares.Shift(1)
	idx := holdings.Index()
	if liquidate {
		first, last := table.FirstOfDay(idx), table.LastOfDay(idx)
		return holdings.MapIndexed(func(row, _ int, v float64) float64 {
			if first[row] || last[row] {
				return 0
			}
			return v
		}), nil
	}

	factors, err := finance.InferSplitFactors(price, finance.DefaultSplitTolerance)
	if err != nil {
		return nil, err
	}
	spans := table.DaySpans(idx)
	for col := 0; col < holdings.Width(); col++ {
		var prevClose float64
		for k, s := range spans {
			carry := 0.0
			if k > 0 && !math.IsNaN(prevClose) {
				carry = prevClose * factors.At(s.Start, col)
			}
			holdings.Set(s.Start, col, carry)
			last, run := carry, 0
			for row := s.Start + 1; row < s.End; row++ {
				if v := holdings.At(row, col); !math.IsNaN(v) {
					last, run = v, 0
					continue
				}
				run++
				if run <= HoldingsFFillLimit {
					holdings.Set(row, col, last)
				}
			}
			prevClose = holdings.At(s.End-1, col)
			if f := factors.At(s.Start, col); f != 1 && k > 0 {
				log.Debugf(log.Evaluator, "split factor %v applied to column %d at %v", f, col, idx[s.Start])
			}
		}
	}
	return holdings, nil
}

// adjustForUnderfills holds positions where the desired trade has no
// execution price; buys need a buy price and sells need a sell price. Holding
// one bar can create a new unfillable trade on the next, so the masking is
// repeated until nothing changes. The first and last bar of every day are
// always filled
func adjustForUnderfills(holdings, buy, sell *table.Frame) (*table.Frame, error) {
	if err := table.CheckCongruent(holdings, buy); err != nil {
		return nil, err
	}
	if err := table.CheckCongruent(holdings, sell); err != nil {
		return nil, err
	}
	idx := holdings.Index()
	first, last := table.FirstOfDay(idx), table.LastOfDay(idx)
	adjusted := holdings
	for i := 0; i < MaxUnderfillIterations; i++ {
		diff := adjusted.Diff()
		var held int
		next := adjusted.MapIndexed(func(row, col int, v float64) float64 {
			if first[row] || last[row] {
				return v
			}
			d := diff.At(row, col)
			if (d > 0 && math.IsNaN(buy.At(row, col))) || (d < 0 && math.IsNaN(sell.At(row, col))) {
				held++
				return adjusted.At(row-1, col)
			}
			return v
		})
		if held == 0 {
			if i > 0 {
				log.Debugf(log.Evaluator, "underfill adjustment settled after %d iterations", i)
			}
			return adjusted, nil
		}
		log.Debugf(log.Evaluator, "underfill iteration %d held %d cells", i+1, held)
		adjusted = next
	}
	return nil, fmt.Errorf("%w after %d iterations", ErrUnderfillNotConverged, MaxUnderfillIterations)
}

// executionPrice returns the price each trade fills at. Buys fill at the buy
// price, sells at the sell price and everything else, including the last bar
// of every day, at the mark price
func executionPrice(holdings, price, buy, sell *table.Frame) *table.Frame {
	if buy == nil || sell == nil {
		return price.FFill(PriceFFillLimit)
	}
	last := table.LastOfDay(holdings.Index())
	diff := holdings.Diff()
	return diff.MapIndexed(func(row, col int, d float64) float64 {
		switch {
		case last[row]:
			return price.At(row, col)
		case d > 0:
			return buy.At(row, col)
		case d < 0:
			return sell.At(row, col)
		}
		return price.At(row, col)
	}).FFill(PriceFFillLimit)
}

// computeFlows returns the cash flow of every share change. The first bar of
// every day never trades
func computeFlows(holdings, execution *table.Frame) *table.Frame {
	first := table.FirstOfDay(holdings.Index())
	diff := holdings.Diff()
	return diff.MapIndexed(func(row, col int, d float64) float64 {
		if first[row] || d == 0 {
			return 0
		}
		return -d * execution.At(row, col)
	})
}

// computePositions values holdings at the forward filled mark price. Flat
// holdings are worth zero regardless of price
func computePositions(holdings, price *table.Frame) *table.Frame {
	mark := price.FFill(PriceFFillLimit)
	return holdings.MapIndexed(func(row, col int, h float64) float64 {
		if h == 0 {
			return 0
		}
		return h * mark.At(row, col)
	})
}
