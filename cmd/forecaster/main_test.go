package main

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/common/file"
	"github.com/thrasher-corp/forecaster/config"
	"github.com/thrasher-corp/forecaster/evaluator"
	"github.com/thrasher-corp/forecaster/finance"
	"github.com/thrasher-corp/forecaster/report"
	"github.com/thrasher-corp/forecaster/table"
)

var instruments = []string{"101", "202", "303"}

func testIndex(t *testing.T, days, perDay int) []time.Time {
	t.Helper()
	ny, err := time.LoadLocation(common.DefaultTimezone)
	require.NoError(t, err)
	var idx []time.Time
	for d := 0; d < days; d++ {
		open := time.Date(2024, 3, 4+d, 9, 30, 0, 0, ny)
		for b := 0; b < perDay; b++ {
			idx = append(idx, open.Add(time.Duration(b)*5*time.Minute))
		}
	}
	return idx
}

func writeInputs(t *testing.T, dir string, withVolatility bool) []time.Time {
	t.Helper()
	idx := testIndex(t, 2, 6)
	fields := map[string]func(j, i int) float64{
		"price":      func(j, i int) float64 { return 100 + 10*float64(i) + math.Sin(float64(j+i)) },
		"prediction": func(j, i int) float64 { return math.Cos(float64(2*j + i)) },
	}
	if withVolatility {
		fields["volatility"] = func(j, i int) float64 { return 1 + 0.1*float64(i) }
	}
	for name, fn := range fields {
		f, err := table.New(idx, instruments)
		require.NoError(t, err)
		f = f.MapIndexed(func(row, col int, _ float64) float64 { return fn(row, col) })
		require.NoError(t, file.WriteAsCSV(filepath.Join(dir, name+".csv"), f.CSVRecords()))
	}
	return idx
}

func writeConfig(t *testing.T, root string) string {
	t.Helper()
	c := map[string]any{
		"nickname": "integration",
		"data": map[string]any{
			"inputDir":  filepath.Join(root, "input"),
			"logDir":    filepath.Join(root, "logs"),
			"reportDir": filepath.Join(root, "reports"),
			"timezone":  common.DefaultTimezone,
		},
		"portfolio": map[string]any{"computeExtendedStats": true},
		"database": map[string]any{
			"enabled":      true,
			"driver":       "sqlite3",
			"database":     "runs.db",
			"migrationDir": filepath.Join("..", "..", "database", "migrations"),
		},
		"logging": map[string]any{"enabled": false},
	}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	path := filepath.Join(root, "forecaster.json")
	require.NoError(t, file.Write(path, data))
	return path
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	return newApp().RunContext(context.Background(), append([]string{"forecaster"}, args...))
}

func TestCommands(t *testing.T) {
	root := t.TempDir()
	idx := writeInputs(t, filepath.Join(root, "input"), true)
	cfgPath := writeConfig(t, root)
	start := idx[0].Format(common.SimpleTimeFormat)
	end := idx[len(idx)-1].Format(common.SimpleTimeFormat)

	require.NoError(t, run(t, "--config", cfgPath, "evaluate", "--log", "--store", "--print"))
	logged, err := os.ReadDir(filepath.Join(root, "logs", evaluator.PnLField))
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, "20240305_095500.csv", logged[0].Name())
	assert.True(t, file.Exists(filepath.Join(root, "reports", "20240305_095500.json")))

	require.NoError(t, run(t, "--config", cfgPath, "read"))
	require.NoError(t, run(t, "--config", cfgPath, "read", "--file", logged[0].Name(), "--rows", "0"))
	require.NoError(t, run(t, "--config", cfgPath, "counts"))

	arrowPath := filepath.Join(root, "export", "input.arrow")
	require.NoError(t, run(t, "--config", cfgPath, "export", "-o", arrowPath))
	fh, err := os.Open(arrowPath)
	require.NoError(t, err)
	exported, err := table.ReadArrow(fh)
	require.NoError(t, fh.Close())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"price", "volatility", "prediction"}, exported.Fields())
	assert.Equal(t, instruments, exported.Instruments())

	loggedArrow := filepath.Join(root, "export", "logged.arrow")
	require.NoError(t, run(t, "--config", cfgPath, "export", "--logged", "-o", loggedArrow))
	assert.True(t, file.Exists(loggedArrow))

	require.NoError(t, run(t, "--config", cfgPath, "import"))
	require.NoError(t, run(t, "--config", cfgPath, "evaluate", "--source", "db", "--start", start, "--end", end, "--store"))
	require.NoError(t, run(t, "--config", cfgPath, "counts", "--source", "db", "--start", start, "--end", end))

	require.NoError(t, run(t, "--config", cfgPath, "migrate"))
	require.NoError(t, run(t, "--config", cfgPath, "migrate", "--command", "up"))
	require.NoError(t, run(t, "--config", cfgPath, "runs", "list"))
	assert.Error(t, run(t, "--config", cfgPath, "runs", "get", "--id", "not-a-uuid"))
	assert.ErrorIs(t, run(t, "--config", cfgPath, "evaluate", "--source", "ftp"), errUnknownSource)
	assert.Error(t, run(t, "--config", filepath.Join(root, "missing.json"), "evaluate"))
}

func TestReadInputDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeInputs(t, dir, false)
	ny, err := time.LoadLocation(common.DefaultTimezone)
	require.NoError(t, err)

	c := config.DefaultConfig()
	_, err = readInputDir(dir, inputFields(&c), ny)
	assert.ErrorIs(t, err, evaluator.ErrMissingField, "volatility is required unless estimated")

	c.Volatility.Estimate = true
	df, err := readInputDir(dir, inputFields(&c), ny)
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "prediction"}, df.Fields())
	assert.Equal(t, 12, df.Len())
	assert.Equal(t, ny, df.Index()[0].Location())

	df, err = withVolatility(df, c.Columns, c.Volatility)
	require.NoError(t, err)
	assert.True(t, df.HasField("volatility"))

	_, err = readInputDir(t.TempDir(), []inputField{{name: "price", optional: true}}, ny)
	assert.ErrorIs(t, err, evaluator.ErrMissingField)
}

func TestInputFields(t *testing.T) {
	t.Parallel()
	c := config.DefaultConfig()
	c.Columns.Spread = "spread"
	c.Columns.BuyPrice = "ask"
	c.Columns.SellPrice = "bid"
	fields := inputFields(&c)
	require.Len(t, fields, 6)
	assert.Equal(t, inputField{name: "volatility"}, fields[1])
	assert.Equal(t, inputField{name: "bid"}, fields[5])
}

func TestNewRun(t *testing.T) {
	t.Parallel()
	idx := testIndex(t, 1, 2)
	s := &report.Summary{
		Start:       idx[0],
		End:         idx[1],
		Bars:        2,
		Instruments: 3,
		TotalPnL:    decimal.NewFromFloat(12.5),
		MaxDrawdown: decimal.NewFromInt(2),
	}
	opts := evaluator.DefaultPortfolioOptions()
	opts.Quantization = finance.NearestLot
	r := newRun("nick", opts, s, "")
	assert.Equal(t, "nick", r.Name)
	assert.Equal(t, "cross_sectional", r.Style)
	assert.Equal(t, "nearest_lot", r.Quantization)
	assert.Equal(t, 12.5, r.TotalPnL)
	assert.False(t, r.SharpeRatio.Valid)
	assert.False(t, r.LogFile.Valid)

	s.SharpeRatio, s.HasSharpeRatio = decimal.NewFromFloat(1.25), true
	r = newRun("nick", opts, s, "20240304_093500.csv")
	assert.Equal(t, 1.25, r.SharpeRatio.Float64)
	assert.Equal(t, "20240304_093500.csv", r.LogFile.String)
}
