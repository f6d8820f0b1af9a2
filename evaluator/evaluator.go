package evaluator

import (
	"fmt"
	"math"
	"time"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/finance"
	"github.com/thrasher-corp/forecaster/log"
	"github.com/thrasher-corp/forecaster/table"
)

// New returns a ForecastEvaluator reading the supplied fields
func New(cols Columns) (*ForecastEvaluator, error) {
	if cols.Price == "" || cols.Volatility == "" || cols.Prediction == "" {
		return nil, errEmptyColumnName
	}
	if (cols.BuyPrice == "") != (cols.SellPrice == "") {
		return nil, errIncompleteExecutionCols
	}
	e := &ForecastEvaluator{cols: cols}
	seen := make(map[string]struct{})
	for _, c := range e.GetCols() {
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("%w: %v", errDuplicateColumnName, c)
		}
		seen[c] = struct{}{}
	}
	return e, nil
}

// GetCols returns the configured field names; price, volatility and
// prediction followed by whichever optional fields are configured
func (e *ForecastEvaluator) GetCols() []string {
	cols := []string{e.cols.Price, e.cols.Volatility, e.cols.Prediction}
	for _, c := range []string{e.cols.Spread, e.cols.BuyPrice, e.cols.SellPrice} {
		if c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

// DefaultPortfolioOptions returns cross sectional, unquantized options with
// end of day liquidation
func DefaultPortfolioOptions() PortfolioOptions {
	return PortfolioOptions{
		Style:               CrossSectional,
		Quantization:        finance.NoQuantization,
		LiquidateAtEndOfDay: true,
		Sizing: finance.SizingConfig{
			TargetGMV:               1e6,
			TargetDollarRiskPerName: 1e3,
		},
	}
}

// Validate checks the options before any computation starts
func (o *PortfolioOptions) Validate() error {
	switch o.Style {
	case CrossSectional, Longitudinal:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStyle, o.Style)
	}
	if err := o.Quantization.Validate(); err != nil {
		return err
	}
	if o.BurnInBars < 0 || o.BurnInDays < 0 {
		return fmt.Errorf("%w: %d bars %d days", errNegativeBurnIn, o.BurnInBars, o.BurnInDays)
	}
	return o.Sizing.Validate()
}

// ComputePortfolio simulates the forecast in df and returns the resulting
// holdings, positions, flows, pnl and statistics
func (e *ForecastEvaluator) ComputePortfolio(df *table.MultiFrame, opts PortfolioOptions) (*Portfolio, error) {
	p, _, err := e.compute(df, opts)
	return p, err
}

func (e *ForecastEvaluator) compute(df *table.MultiFrame, opts PortfolioOptions) (*Portfolio, *prepared, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	in, err := e.prepare(df)
	if err != nil {
		return nil, nil, err
	}

	var targets *table.Frame
	switch opts.Style {
	case CrossSectional:
		targets, err = finance.ComputeTargetPositionsCrossSectionally(in.prediction, in.volatility, opts.Sizing)
	case Longitudinal:
		targets, err = finance.ComputeTargetPositionsLongitudinally(in.prediction, in.volatility, in.spread, opts.Sizing)
	}
	if err != nil {
		return nil, nil, err
	}
	if err = table.CheckCongruent(in.prediction, targets); err != nil {
		return nil, nil, fmt.Errorf("target positions: %w", err)
	}

	// non positive prices cannot size a position
	sizingPrice := in.price.Map(func(v float64) float64 {
		if v <= 0 {
			return math.NaN()
		}
		return v
	})
	shares, err := targets.Div(sizingPrice)
	if err != nil {
		return nil, nil, err
	}
	shares, err = finance.Quantize(shares, opts.Quantization)
	if err != nil {
		return nil, nil, err
	}
	holdings, err := idealHoldings(shares, in.price, opts.LiquidateAtEndOfDay)
	if err != nil {
		return nil, nil, err
	}
	if in.buy != nil {
		holdings, err = adjustForUnderfills(holdings, in.buy, in.sell)
		if err != nil {
			return nil, nil, err
		}
	}
	flows := computeFlows(holdings, executionPrice(holdings, in.price, in.buy, in.sell))
	positions := computePositions(holdings, in.price)
	pnl, err := positions.Diff().Add(flows)
	if err != nil {
		return nil, nil, err
	}
	stats, err := finance.ComputeStats(positions, flows, pnl, finance.StatsOptions{
		Extended: opts.ComputeExtendedStats,
		Spread:   in.spread,
	})
	if err != nil {
		return nil, nil, err
	}

	portfolio := (&Portfolio{
		Holdings:  holdings,
		Positions: positions,
		Flows:     flows,
		PnL:       pnl,
		Stats:     stats,
	}).burnIn(opts.BurnInBars, opts.BurnInDays)
	if portfolio.Holdings.Len() < holdings.Len() {
		log.Debugf(log.Evaluator, "burn in removed %d of %d bars",
			holdings.Len()-portfolio.Holdings.Len(), holdings.Len())
	}
	if opts.ReindexLikeInput {
		if portfolio, err = portfolio.reindex(df.Index()); err != nil {
			return nil, nil, err
		}
	}
	return portfolio, in, nil
}

// prepare validates df, trims it to the configured fields, aligns every
// field to the instrument universe and drops inactive and warm up bars
func (e *ForecastEvaluator) prepare(df *table.MultiFrame) (*prepared, error) {
	if df == nil {
		return nil, common.ErrNilArguments
	}
	if df.Len() == 0 {
		return nil, errEmptyInput
	}
	if err := table.ValidateIndex(df.Index()); err != nil {
		return nil, err
	}
	for _, c := range e.GetCols() {
		if !df.HasField(c) {
			return nil, fmt.Errorf("%w: %v", ErrMissingField, c)
		}
	}
	trimmed, err := df.SelectFields(e.GetCols()...)
	if err != nil {
		return nil, err
	}
	aligned, err := trimmed.AlignColumns(trimmed.Instruments())
	if err != nil {
		return nil, err
	}
	price, err := aligned.Field(e.cols.Price)
	if err != nil {
		return nil, err
	}
	active := price.ActiveRows()
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: every price is missing", ErrNoActiveBars)
	}
	aligned = aligned.SelectRows(active)

	prediction, err := aligned.Field(e.cols.Prediction)
	if err != nil {
		return nil, err
	}
	volatility, err := aligned.Field(e.cols.Volatility)
	if err != nil {
		return nil, err
	}
	firstPrediction, firstVolatility := prediction.FirstValidRow(), volatility.FirstValidRow()
	if firstPrediction < 0 || firstVolatility < 0 {
		return nil, fmt.Errorf("%w: no valid prediction or volatility on active bars", ErrNoActiveBars)
	}
	first := max(firstPrediction, firstVolatility)
	aligned = aligned.SliceRows(first, aligned.Len())
	log.Debugf(log.Evaluator, "evaluating %d of %d bars across %d instruments",
		aligned.Len(), df.Len(), len(aligned.Instruments()))

	in := &prepared{data: aligned}
	fields := []struct {
		name string
		dst  **table.Frame
	}{
		{e.cols.Price, &in.price},
		{e.cols.Volatility, &in.volatility},
		{e.cols.Prediction, &in.prediction},
		{e.cols.Spread, &in.spread},
		{e.cols.BuyPrice, &in.buy},
		{e.cols.SellPrice, &in.sell},
	}
	for i := range fields {
		if fields[i].name == "" {
			continue
		}
		if *fields[i].dst, err = aligned.Field(fields[i].name); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// burnIn drops the leading bars then the leading trading days
func (p *Portfolio) burnIn(bars, days int) *Portfolio {
	if bars == 0 && days == 0 {
		return p
	}
	idx := p.Holdings.Index()
	start := min(bars, len(idx))
	if days > 0 {
		spans := table.DaySpans(idx[start:])
		if days >= len(spans) {
			start = len(idx)
		} else {
			start += spans[days].Start
		}
	}
	return &Portfolio{
		Holdings:  p.Holdings.SliceRows(start, len(idx)),
		Positions: p.Positions.SliceRows(start, len(idx)),
		Flows:     p.Flows.SliceRows(start, len(idx)),
		PnL:       p.PnL.SliceRows(start, len(idx)),
		Stats:     p.Stats.SliceRows(start, len(idx)),
	}
}

func (p *Portfolio) reindex(index []time.Time) (*Portfolio, error) {
	resp := &Portfolio{}
	for _, f := range []struct {
		src *table.Frame
		dst **table.Frame
	}{
		{p.Holdings, &resp.Holdings},
		{p.Positions, &resp.Positions},
		{p.Flows, &resp.Flows},
		{p.PnL, &resp.PnL},
		{p.Stats, &resp.Stats},
	} {
		var err error
		if *f.dst, err = f.src.Reindex(index); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
