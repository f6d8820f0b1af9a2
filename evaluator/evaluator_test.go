package evaluator

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/finance"
	"github.com/thrasher-corp/forecaster/table"
)

var nan = math.NaN()

var defaultColumns = Columns{
	Price:      "close",
	Volatility: "vol",
	Prediction: "pred",
}

type field struct {
	name string
	data [][]float64
}

// bars returns perDay one minute bars from 09:30 New York on consecutive days
func bars(t *testing.T, days, perDay int) []time.Time {
	t.Helper()
	ny, err := time.LoadLocation(common.DefaultTimezone)
	require.NoError(t, err)
	idx := make([]time.Time, 0, days*perDay)
	for d := 0; d < days; d++ {
		open := time.Date(2024, 3, 4+d, 9, 30, 0, 0, ny)
		for b := 0; b < perDay; b++ {
			idx = append(idx, open.Add(time.Duration(b)*time.Minute))
		}
	}
	return idx
}

func constant(n int, v float64) []float64 {
	resp := make([]float64, n)
	for i := range resp {
		resp[i] = v
	}
	return resp
}

func input(t *testing.T, idx []time.Time, instruments []string, fields ...field) *table.MultiFrame {
	t.Helper()
	m, err := table.NewMultiFrame(idx)
	require.NoError(t, err)
	for _, f := range fields {
		fr, err := table.NewFromColumns(idx, instruments, f.data)
		require.NoError(t, err)
		require.NoError(t, m.AddField(f.name, fr))
	}
	return m
}

func evaluator(t *testing.T, cols Columns) *ForecastEvaluator {
	t.Helper()
	e, err := New(cols)
	require.NoError(t, err)
	return e
}

func assertColumn(t *testing.T, f *table.Frame, name string, expected ...float64) {
	t.Helper()
	actual, err := f.Column(name)
	require.NoError(t, err)
	require.Len(t, actual, len(expected))
	for i := range expected {
		if math.IsNaN(expected[i]) {
			assert.Truef(t, math.IsNaN(actual[i]), "%v[%d]: expected NaN, got %v", name, i, actual[i])
			continue
		}
		assert.InDeltaf(t, expected[i], actual[i], 1e-6, "%v[%d]", name, i)
	}
}

// wavyInput returns fully populated multi day input for property checks
func wavyInput(t *testing.T, days, perDay int) *table.MultiFrame {
	t.Helper()
	idx := bars(t, days, perDay)
	instruments := []string{"101", "202", "303"}
	price := make([][]float64, len(instruments))
	vol := make([][]float64, len(instruments))
	pred := make([][]float64, len(instruments))
	for i := range instruments {
		price[i] = make([]float64, len(idx))
		vol[i] = make([]float64, len(idx))
		pred[i] = make([]float64, len(idx))
		for j := range idx {
			x := float64(j)
			price[i][j] = 100 + 10*math.Sin(0.7*x+float64(i))
			vol[i][j] = 1 + 0.5*math.Pow(math.Cos(x+float64(i)), 2)
			pred[i][j] = math.Sin(1.3*x + 2*float64(i))
		}
	}
	return input(t, idx, instruments,
		field{"close", price}, field{"vol", vol}, field{"pred", pred})
}

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New(Columns{Price: "close", Volatility: "vol"})
	assert.ErrorIs(t, err, errEmptyColumnName)

	_, err = New(Columns{Price: "close", Volatility: "vol", Prediction: "pred", BuyPrice: "ask"})
	assert.ErrorIs(t, err, errIncompleteExecutionCols)

	_, err = New(Columns{Price: "close", Volatility: "close", Prediction: "pred"})
	assert.ErrorIs(t, err, errDuplicateColumnName)

	e := evaluator(t, Columns{
		Price: "close", Volatility: "vol", Prediction: "pred",
		Spread: "spread", BuyPrice: "ask", SellPrice: "bid",
	})
	assert.Equal(t, []string{"close", "vol", "pred", "spread", "ask", "bid"}, e.GetCols())
	assert.Equal(t, []string{"close", "vol", "pred"}, evaluator(t, defaultColumns).GetCols())
}

func TestPortfolioOptionsValidate(t *testing.T) {
	t.Parallel()
	opts := DefaultPortfolioOptions()
	assert.NoError(t, opts.Validate())

	opts.Style = "diagonal"
	assert.ErrorIs(t, opts.Validate(), ErrInvalidStyle)

	opts = DefaultPortfolioOptions()
	opts.Quantization = "nearest_dozen"
	assert.ErrorIs(t, opts.Validate(), ErrInvalidQuantization)

	opts = DefaultPortfolioOptions()
	opts.BurnInDays = -1
	assert.ErrorIs(t, opts.Validate(), errNegativeBurnIn)

	opts = DefaultPortfolioOptions()
	opts.Sizing.TargetGMV = -1
	assert.ErrorIs(t, opts.Validate(), finance.ErrInvalidSizingConfig)
}

func TestComputePortfolioConcreteScenario(t *testing.T) {
	t.Parallel()
	idx := bars(t, 1, 4)
	df := input(t, idx, []string{"1", "2"},
		field{"close", [][]float64{constant(4, 100), constant(4, 100)}},
		field{"vol", [][]float64{constant(4, 1), constant(4, 1)}},
		field{"pred", [][]float64{{1, 0, -1, 0}, {1, 0, -1, 0}}},
	)
	opts := DefaultPortfolioOptions()
	p, err := evaluator(t, defaultColumns).ComputePortfolio(df, opts)
	require.NoError(t, err)

	for _, c := range []string{"1", "2"} {
		assertColumn(t, p.Holdings, c, 0, 5000, 0, 0)
		assertColumn(t, p.Flows, c, 0, -500000, 500000, 0)
		assertColumn(t, p.Positions, c, 0, 500000, 0, 0)
		assertColumn(t, p.PnL, c, nan, 0, 0, 0)
	}
	assert.Equal(t, []string{finance.PnL, finance.GrossVolume, finance.NetVolume, finance.GMV, finance.NMV}, p.Stats.Columns())
	assertColumn(t, p.Stats, finance.PnL, nan, 0, 0, 0)
	assertColumn(t, p.Stats, finance.GrossVolume, 0, 1e6, 1e6, 0)
	assertColumn(t, p.Stats, finance.NetVolume, 0, 1e6, -1e6, 0)
	assertColumn(t, p.Stats, finance.GMV, 0, 1e6, 0, 0)

	price, err := df.Field("close")
	require.NoError(t, err)
	assertColumn(t, price, "1", 100, 100, 100, 100)
}

func TestComputePortfolioZeroPrice(t *testing.T) {
	t.Parallel()
	idx := bars(t, 1, 4)
	df := input(t, idx, []string{"1", "2"},
		field{"close", [][]float64{{100, 0, 100, 100}, constant(4, 100)}},
		field{"vol", [][]float64{constant(4, 1), constant(4, 1)}},
		field{"pred", [][]float64{constant(4, 1), constant(4, 1)}},
	)
	e := evaluator(t, defaultColumns)
	for _, liquidate := range []bool{true, false} {
		opts := DefaultPortfolioOptions()
		opts.LiquidateAtEndOfDay = liquidate
		p, err := e.ComputePortfolio(df, opts)
		require.NoError(t, err)
		for name, f := range map[string]*table.Frame{
			"holdings":  p.Holdings,
			"positions": p.Positions,
			"flows":     p.Flows,
			"pnl":       p.PnL,
			"stats":     p.Stats,
		} {
			for col := 0; col < f.Width(); col++ {
				for row := 0; row < f.Len(); row++ {
					assert.Falsef(t, math.IsInf(f.At(row, col), 0), "liquidate %v %v[%d][%d] is infinite", liquidate, name, row, col)
				}
			}
		}
		h, err := p.Holdings.Column("1")
		require.NoError(t, err)
		if liquidate {
			assert.True(t, math.IsNaN(h[2]), "a zero price leaves the next bar unsized")
			assertColumn(t, p.Holdings, "2", 0, 5000, 5000, 0)
		} else {
			assertColumn(t, p.Holdings, "1", 0, 5000, 5000, 5000)
		}
	}
}

func TestComputePortfolioShapeAndAdditivity(t *testing.T) {
	t.Parallel()
	df := wavyInput(t, 3, 12)
	e := evaluator(t, defaultColumns)
	for _, liquidate := range []bool{true, false} {
		for _, style := range []Style{CrossSectional, Longitudinal} {
			opts := DefaultPortfolioOptions()
			opts.Style = style
			opts.LiquidateAtEndOfDay = liquidate
			opts.ComputeExtendedStats = true
			p, err := e.ComputePortfolio(df, opts)
			require.NoError(t, err)

			instruments := df.Instruments()
			for _, f := range []*table.Frame{p.Holdings, p.Positions, p.Flows, p.PnL} {
				assert.Equal(t, instruments, f.Columns())
				require.NoError(t, table.CheckCongruent(p.Holdings, f))
			}
			assert.Equal(t, p.Holdings.Index(), p.Stats.Index())
			assert.Equal(t, 8, p.Stats.Width())

			for _, c := range instruments {
				pnl, err := p.PnL.Column(c)
				require.NoError(t, err)
				pos, err := p.Positions.Column(c)
				require.NoError(t, err)
				flow, err := p.Flows.Column(c)
				require.NoError(t, err)
				for t0 := 0; t0 < len(pnl); t0 += 5 {
					for t1 := t0 + 1; t1 < len(pnl); t1 += 3 {
						var sumPnL, sumFlow float64
						for k := t0 + 1; k <= t1; k++ {
							sumPnL += pnl[k]
							sumFlow += flow[k]
						}
						assert.InDeltaf(t, pos[t1]-pos[t0]+sumFlow, sumPnL, 1e-4,
							"%v liquidate=%v %v [%d, %d]", style, liquidate, c, t0, t1)
					}
				}
			}
		}
	}
}

func TestComputePortfolioDayBoundaries(t *testing.T) {
	t.Parallel()
	df := wavyInput(t, 4, 7)
	e := evaluator(t, defaultColumns)
	opts := DefaultPortfolioOptions()
	p, err := e.ComputePortfolio(df, opts)
	require.NoError(t, err)
	first, last := table.FirstOfDay(p.Holdings.Index()), table.LastOfDay(p.Holdings.Index())
	for col := 0; col < p.Holdings.Width(); col++ {
		for row := range last {
			if last[row] {
				assert.Zerof(t, p.Holdings.At(row, col), "holdings at day end row %d", row)
			}
			if first[row] {
				assert.Zerof(t, p.Flows.At(row, col), "flow at day start row %d", row)
			}
		}
	}

	opts.LiquidateAtEndOfDay = false
	p, err = e.ComputePortfolio(df, opts)
	require.NoError(t, err)
	var carried bool
	for col := 0; col < p.Flows.Width(); col++ {
		for row := range first {
			if !first[row] {
				continue
			}
			assert.Zerof(t, p.Flows.At(row, col), "flow at day start row %d", row)
			if row > 0 && p.Holdings.At(row, col) != 0 {
				carried = true
			}
		}
	}
	assert.True(t, carried, "holdings must be carried overnight")
}

func TestComputePortfolioSplitCarry(t *testing.T) {
	t.Parallel()
	idx := bars(t, 2, 3)
	df := input(t, idx, []string{"1"},
		field{"close", [][]float64{{100, 100, 100, 50, 50, 50}}},
		field{"vol", [][]float64{constant(6, 1)}},
		field{"pred", [][]float64{constant(6, 1)}},
	)
	opts := DefaultPortfolioOptions()
	opts.LiquidateAtEndOfDay = false
	p, err := evaluator(t, defaultColumns).ComputePortfolio(df, opts)
	require.NoError(t, err)
	assertColumn(t, p.Holdings, "1", 0, 10000, 10000, 20000, 20000, 20000)
	assertColumn(t, p.Flows, "1", 0, -1e6, 0, 0, 0, 0)
	assertColumn(t, p.Positions, "1", 0, 1e6, 1e6, 1e6, 1e6, 1e6)
	assertColumn(t, p.PnL, "1", nan, 0, 0, 0, 0, 0)
}

func TestComputePortfolioQuantization(t *testing.T) {
	t.Parallel()
	idx := bars(t, 1, 4)
	df := input(t, idx, []string{"1"},
		field{"close", [][]float64{constant(4, 300)}},
		field{"vol", [][]float64{constant(4, 1)}},
		field{"pred", [][]float64{constant(4, 1)}},
	)
	e := evaluator(t, defaultColumns)
	opts := DefaultPortfolioOptions()
	for q, expected := range map[finance.Quantization]float64{
		finance.NoQuantization: 1e6 / 300.0,
		finance.NearestShare:   3333,
		finance.NearestLot:     3300,
	} {
		opts.Quantization = q
		p, err := e.ComputePortfolio(df, opts)
		require.NoError(t, err)
		assertColumn(t, p.Holdings, "1", 0, expected, expected, 0)
	}
}

func TestComputePortfolioTrimming(t *testing.T) {
	t.Parallel()
	idx := bars(t, 2, 4)
	price := constant(8, 100)
	price[0] = nan
	pred := constant(8, 1)
	pred[1] = nan
	df := input(t, idx, []string{"1"},
		field{"close", [][]float64{price}},
		field{"vol", [][]float64{constant(8, 1)}},
		field{"pred", [][]float64{pred}},
		field{"ignored", [][]float64{constant(8, 7)}},
	)
	e := evaluator(t, defaultColumns)
	opts := DefaultPortfolioOptions()
	p, err := e.ComputePortfolio(df, opts)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Holdings.Len())
	assert.True(t, p.Holdings.Index()[0].Equal(idx[2]))

	opts.BurnInDays = 1
	p, err = e.ComputePortfolio(df, opts)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Stats.Len())
	assert.True(t, p.Stats.Index()[0].Equal(idx[4]))

	opts.BurnInDays = 0
	opts.BurnInBars = 3
	p, err = e.ComputePortfolio(df, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, p.PnL.Len())

	opts.BurnInDays = 5
	p, err = e.ComputePortfolio(df, opts)
	require.NoError(t, err)
	assert.Zero(t, p.Flows.Len())

	opts.BurnInDays = 1
	opts.BurnInBars = 0
	opts.ReindexLikeInput = true
	p, err = e.ComputePortfolio(df, opts)
	require.NoError(t, err)
	assert.Equal(t, len(idx), p.Holdings.Len())
	assertColumn(t, p.Holdings, "1", nan, nan, nan, nan, 0, 10000, 10000, 0)

	annotated, _, err := e.AnnotateForecasts(df, opts)
	require.NoError(t, err)
	annotatedPrice, err := annotated.Field(PriceField)
	require.NoError(t, err)
	assertColumn(t, annotatedPrice, "1", nan, 100, 100, 100, 100, 100, 100, 100)
	annotatedPrediction, err := annotated.Field(PredictionField)
	require.NoError(t, err)
	assertColumn(t, annotatedPrediction, "1", 1, nan, 1, 1, 1, 1, 1, 1)
}

func TestComputePortfolioErrors(t *testing.T) {
	t.Parallel()
	df := wavyInput(t, 1, 5)
	e := evaluator(t, defaultColumns)

	opts := DefaultPortfolioOptions()
	opts.Style = "diagonal"
	_, err := e.ComputePortfolio(df, opts)
	assert.ErrorIs(t, err, ErrInvalidStyle)

	opts = DefaultPortfolioOptions()
	opts.Quantization = "nearest_dozen"
	_, err = e.ComputePortfolio(df, opts)
	assert.ErrorIs(t, err, ErrInvalidQuantization)

	opts = DefaultPortfolioOptions()
	_, err = e.ComputePortfolio(nil, opts)
	assert.ErrorIs(t, err, common.ErrNilArguments)

	_, err = evaluator(t, Columns{Price: "close", Volatility: "vol", Prediction: "alpha"}).ComputePortfolio(df, opts)
	assert.ErrorIs(t, err, ErrMissingField)

	idx := bars(t, 1, 3)
	noPrices := input(t, idx, []string{"1"},
		field{"close", [][]float64{constant(3, nan)}},
		field{"vol", [][]float64{constant(3, 1)}},
		field{"pred", [][]float64{constant(3, 1)}},
	)
	_, err = e.ComputePortfolio(noPrices, opts)
	assert.ErrorIs(t, err, ErrNoActiveBars)

	noPredictions := input(t, idx, []string{"1"},
		field{"close", [][]float64{constant(3, 1)}},
		field{"vol", [][]float64{constant(3, 1)}},
		field{"pred", [][]float64{constant(3, nan)}},
	)
	_, err = e.ComputePortfolio(noPredictions, opts)
	assert.ErrorIs(t, err, ErrNoActiveBars)

	empty, err := table.NewMultiFrame(nil)
	require.NoError(t, err)
	_, err = e.ComputePortfolio(empty, opts)
	assert.ErrorIs(t, err, errEmptyInput)
}

func underfillInput(t *testing.T, n int, missingBuys int) *table.MultiFrame {
	t.Helper()
	idx := bars(t, 1, n)
	buy := constant(n, 100.5)
	for j := 1; j <= missingBuys; j++ {
		buy[j] = nan
	}
	return input(t, idx, []string{"1"},
		field{"close", [][]float64{constant(n, 100)}},
		field{"vol", [][]float64{constant(n, 1)}},
		field{"pred", [][]float64{constant(n, 1)}},
		field{"ask", [][]float64{buy}},
		field{"bid", [][]float64{constant(n, 99.5)}},
	)
}

func TestUnderfillAdjustment(t *testing.T) {
	t.Parallel()
	cols := defaultColumns
	cols.BuyPrice = "ask"
	cols.SellPrice = "bid"
	e := evaluator(t, cols)
	opts := DefaultPortfolioOptions()

	p, err := e.ComputePortfolio(underfillInput(t, 8, 3), opts)
	require.NoError(t, err)
	assertColumn(t, p.Holdings, "1", 0, 0, 0, 0, 10000, 10000, 10000, 0)
	assertColumn(t, p.Flows, "1", 0, 0, 0, 0, -1005000, 0, 0, 1e6)

	_, err = e.ComputePortfolio(underfillInput(t, 200, 150), opts)
	assert.ErrorIs(t, err, ErrUnderfillNotConverged)
}

func TestUnderfillSells(t *testing.T) {
	t.Parallel()
	cols := defaultColumns
	cols.BuyPrice = "ask"
	cols.SellPrice = "bid"
	idx := bars(t, 1, 6)
	df := input(t, idx, []string{"1"},
		field{"close", [][]float64{constant(6, 100)}},
		field{"vol", [][]float64{constant(6, 1)}},
		field{"pred", [][]float64{{1, 1, -1, -1, -1, -1}}},
		field{"ask", [][]float64{constant(6, 101)}},
		field{"bid", [][]float64{{99, 99, 99, nan, 99, 99}}},
	)
	p, err := evaluator(t, cols).ComputePortfolio(df, DefaultPortfolioOptions())
	require.NoError(t, err)
	assertColumn(t, p.Holdings, "1", 0, 10000, 10000, 10000, -10000, 0)
	assertColumn(t, p.Flows, "1", 0, -1010000, 0, 0, 1980000, -1e6)
}

func TestAnnotateForecasts(t *testing.T) {
	t.Parallel()
	cols := defaultColumns
	cols.Spread = "spread"
	df := wavyInput(t, 2, 5)
	spread, err := table.New(df.Index(), df.Instruments())
	require.NoError(t, err)
	require.NoError(t, df.AddField("spread", spread.Full(0.01)))

	e := evaluator(t, cols)
	opts := DefaultPortfolioOptions()
	opts.ComputeExtendedStats = true
	annotated, stats, err := e.AnnotateForecasts(df, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{PriceField, VolatilityField, PredictionField, HoldingsField,
		PositionField, FlowField, PnLField, SpreadField}, annotated.Fields())
	assert.Equal(t, annotated.Index(), stats.Index())
	assert.Contains(t, stats.Columns(), finance.TC)

	out, err := e.ToStr(df, opts)
	require.NoError(t, err)
	for _, s := range []string{HoldingsField, StatisticsField, "101"} {
		assert.True(t, strings.Contains(strings.ToLower(out), s), s)
	}

	opts.Style = "diagonal"
	_, err = e.ToStr(df, opts)
	assert.ErrorIs(t, err, ErrInvalidStyle)
}

func TestComputeCounts(t *testing.T) {
	t.Parallel()
	df := wavyInput(t, 3, 2)
	pred, err := df.Field("pred")
	require.NoError(t, err)
	pred.Set(0, 0, nan)

	counts, err := evaluator(t, defaultColumns).ComputeCounts(df)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30:00", "09:31:00"}, counts.TimesOfDay)
	assert.Equal(t, []string{"close", "vol", "pred"}, counts.Fields)
	assert.Equal(t, []int{9, 9}, counts.Values["close"])
	assert.Equal(t, []int{8, 9}, counts.Values["pred"])
	assert.Contains(t, counts.String(), "09:31:00")

	_, err = evaluator(t, defaultColumns).ComputeCounts(nil)
	assert.ErrorIs(t, err, common.ErrNilArguments)
}
