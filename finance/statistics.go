package finance

import (
	"math"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/table"
)

// ComputeStats reduces per instrument positions, flows and pnl into per bar
// portfolio statistics. Every reduction requires at least one valid cell per
// bar, so bars without data are NaN rather than zero
func ComputeStats(positions, flows, pnl *table.Frame, opts StatsOptions) (*table.Frame, error) {
	if positions == nil || flows == nil || pnl == nil {
		return nil, common.ErrNilArguments
	}
	if err := table.CheckCongruent(positions, flows); err != nil {
		return nil, err
	}
	if err := table.CheckCongruent(positions, pnl); err != nil {
		return nil, err
	}
	columns := []string{PnL, GrossVolume, NetVolume, GMV, NMV}
	data := [][]float64{
		pnl.RowSum(1),
		flows.Abs().RowSum(1),
		flows.Scale(-1).RowSum(1),
		positions.Abs().RowSum(1),
		positions.RowSum(1),
	}
	if opts.Extended {
		columns = append(columns, GPC, NPC, WLC)
		data = append(data,
			positions.Sign().Abs().RowSum(1),
			positions.Sign().RowSum(1),
			pnl.Sign().RowSum(1),
		)
		if opts.Spread != nil {
			cost, err := table.Combine(opts.Spread, flows, func(spread, flow float64) float64 {
				return 0.5 * spread * math.Abs(flow)
			})
			if err != nil {
				return nil, err
			}
			columns = append(columns, TC)
			data = append(data, cost.RowSum(1))
		}
	}
	return table.NewFromColumns(positions.Index(), columns, data)
}
