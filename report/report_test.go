package report

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/finance"
	"github.com/thrasher-corp/forecaster/table"
)

var nan = math.NaN()

func testStats(t *testing.T, withCosts bool) *table.Frame {
	t.Helper()
	ny, err := time.LoadLocation(common.DefaultTimezone)
	require.NoError(t, err)
	var idx []time.Time
	for d := 0; d < 2; d++ {
		open := time.Date(2024, 3, 4+d, 9, 30, 0, 0, ny)
		for b := 0; b < 3; b++ {
			idx = append(idx, open.Add(time.Duration(b)*5*time.Minute))
		}
	}
	columns := []string{finance.PnL, finance.GrossVolume, finance.GMV}
	data := [][]float64{
		{nan, 10, -4, 0, 6, 2},
		{0, 100, 50, 0, 80, 20},
		{0, 1000, 1000, 0, 500, 500},
	}
	if withCosts {
		columns = append(columns, finance.TC)
		data = append(data, []float64{0, 0.5, 0.25, 0, nan, 0.25})
	}
	f, err := table.NewFromColumns(idx, columns, data)
	require.NoError(t, err)
	return f
}

func TestSummarise(t *testing.T) {
	t.Parallel()
	s, err := Summarise(testStats(t, false), 3)
	require.NoError(t, err)
	assert.Equal(t, 6, s.Bars)
	assert.Equal(t, 2, s.Days)
	assert.Equal(t, 3, s.Instruments)
	assert.True(t, s.TotalPnL.Equal(decimal.NewFromInt(14)), s.TotalPnL.String())
	assert.InDelta(t, 2.8, s.MeanBarPnL.InexactFloat64(), 1e-12)
	assert.InDelta(t, 7, s.MeanDailyPnL.InexactFloat64(), 1e-12)
	assert.InDelta(t, math.Sqrt2, s.StdDevDailyPnL.InexactFloat64(), 1e-12)
	require.True(t, s.HasSharpeRatio)
	assert.InDelta(t, 7*math.Sqrt(126), s.SharpeRatio.InexactFloat64(), 1e-9)
	assert.True(t, s.MaxDrawdown.Equal(decimal.NewFromInt(4)))
	assert.True(t, s.HitRate.Equal(decimal.NewFromFloat(0.75)))
	assert.True(t, s.GrossVolume.Equal(decimal.NewFromInt(250)))
	assert.True(t, s.AverageGMV.Equal(decimal.NewFromInt(500)))
	assert.True(t, s.Turnover.Equal(decimal.NewFromFloat(0.25)), s.Turnover.String())
	assert.False(t, s.HasCosts)

	withCosts, err := Summarise(testStats(t, true), 3)
	require.NoError(t, err)
	assert.True(t, withCosts.HasCosts)
	assert.True(t, withCosts.TransactionCosts.Equal(decimal.NewFromInt(1)))
}

func TestSummariseSingleDay(t *testing.T) {
	t.Parallel()
	stats := testStats(t, false).SliceRows(0, 3)
	s, err := Summarise(stats, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Days)
	assert.False(t, s.HasSharpeRatio, "one day has no dispersion")
	assert.Contains(t, s.String(), "n/a")
}

func TestSummariseErrors(t *testing.T) {
	t.Parallel()
	_, err := Summarise(nil, 1)
	assert.ErrorIs(t, err, common.ErrNilArguments)

	_, err = Summarise(testStats(t, false).SliceRows(0, 0), 1)
	assert.ErrorIs(t, err, errNoBars)

	stats := testStats(t, false)
	noGMV, err := stats.ReindexColumns([]string{finance.PnL, finance.GrossVolume})
	require.NoError(t, err)
	_, err = Summarise(noGMV, 1)
	assert.ErrorIs(t, err, errMissingStat)

	infinite := testStats(t, false)
	infinite.Set(2, 1, math.Inf(1))
	assert.NotPanics(t, func() {
		_, err = Summarise(infinite, 1)
	})
	assert.ErrorIs(t, err, ErrNonFiniteStat)

	costs := testStats(t, true)
	costs.Set(1, 3, math.Inf(-1))
	_, err = Summarise(costs, 1)
	assert.ErrorIs(t, err, ErrNonFiniteStat)
}

func TestSummaryOutput(t *testing.T) {
	t.Parallel()
	s, err := Summarise(testStats(t, true), 3)
	require.NoError(t, err)
	out := s.String()
	for _, want := range []string{"Total PnL", "14.00", "75.00%", "Turnover", "0.25", "Transaction costs", "2024-03-04 09:30:00"} {
		assert.Contains(t, out, want)
	}
	s.PrintResults()

	path := filepath.Join(t.TempDir(), "summary", "run.json")
	require.NoError(t, s.WriteJSON(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.TotalPnL.Equal(s.TotalPnL))
	assert.True(t, strings.Contains(string(data), `"total-pnl"`))

	assert.ErrorIs(t, s.WriteJSON(""), errNoFilePath)
	var nilSummary *Summary
	assert.ErrorIs(t, nilSummary.WriteJSON(path), errNilSummary)
}
