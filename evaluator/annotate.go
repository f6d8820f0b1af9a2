package evaluator

import (
	"strings"

	"github.com/thrasher-corp/forecaster/table"
)

// AnnotateForecasts evaluates df and returns one wide table holding the
// inputs alongside the simulated portfolio on the output index, plus the
// statistics frame
func (e *ForecastEvaluator) AnnotateForecasts(df *table.MultiFrame, opts PortfolioOptions) (*table.MultiFrame, *table.Frame, error) {
	p, in, err := e.compute(df, opts)
	if err != nil {
		return nil, nil, err
	}
	index := p.Holdings.Index()
	resp, err := table.NewMultiFrame(index)
	if err != nil {
		return nil, nil, err
	}
	// inputs come from df so bars dropped as warm up keep their values
	// when reindexed like the input
	universe := in.price.Columns()
	var fields []namedFrame
	for _, c := range [][2]string{
		{PriceField, e.cols.Price},
		{VolatilityField, e.cols.Volatility},
		{PredictionField, e.cols.Prediction},
	} {
		f, err := inputFrame(df, c[1], universe)
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, namedFrame{c[0], f})
	}
	fields = append(fields,
		namedFrame{HoldingsField, p.Holdings},
		namedFrame{PositionField, p.Positions},
		namedFrame{FlowField, p.Flows},
		namedFrame{PnLField, p.PnL},
	)
	if in.spread != nil {
		f, err := inputFrame(df, e.cols.Spread, universe)
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, namedFrame{SpreadField, f})
	}
	for i := range fields {
		f, err := fields[i].frame.Reindex(index)
		if err != nil {
			return nil, nil, err
		}
		if err = resp.AddField(fields[i].name, f); err != nil {
			return nil, nil, err
		}
	}
	return resp, p.Stats, nil
}

func inputFrame(df *table.MultiFrame, column string, universe []string) (*table.Frame, error) {
	f, err := df.Field(column)
	if err != nil {
		return nil, err
	}
	return f.ReindexColumns(universe)
}

// ToStr renders the annotated forecasts and statistics as text
func (e *ForecastEvaluator) ToStr(df *table.MultiFrame, opts PortfolioOptions) (string, error) {
	annotated, stats, err := e.AnnotateForecasts(df, opts)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(table.RenderMulti(annotated, table.RenderOptions{Precision: 4}))
	sb.WriteString("\n")
	sb.WriteString(table.Render(stats, table.RenderOptions{Title: StatisticsField, Precision: 2}))
	return sb.String(), nil
}
