package report

import (
	"encoding/json"
	"fmt"
	"math"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/common/convert"
	"github.com/thrasher-corp/forecaster/common/file"
	gctmath "github.com/thrasher-corp/forecaster/common/math"
	"github.com/thrasher-corp/forecaster/finance"
	"github.com/thrasher-corp/forecaster/log"
	"github.com/thrasher-corp/forecaster/table"
)

// Summarise computes the headline performance from the per bar statistics
// produced by an evaluation of the supplied number of instruments
func Summarise(stats *table.Frame, instruments int) (*Summary, error) {
	if stats == nil {
		return nil, common.ErrNilArguments
	}
	if stats.Len() == 0 {
		return nil, errNoBars
	}
	pnl, err := column(stats, finance.PnL)
	if err != nil {
		return nil, err
	}
	gross, err := column(stats, finance.GrossVolume)
	if err != nil {
		return nil, err
	}
	gmv, err := column(stats, finance.GMV)
	if err != nil {
		return nil, err
	}

	idx := stats.Index()
	spans := table.DaySpans(idx)
	daily := make([]float64, len(spans))
	dailyGross := make([]float64, len(spans))
	for d, s := range spans {
		daily[d] = sum(pnl[s.Start:s.End])
		dailyGross[d] = sum(gross[s.Start:s.End])
	}
	barPnL := gctmath.DropNaN(pnl)

	resp := &Summary{
		Start:          idx[0],
		End:            idx[len(idx)-1],
		Bars:           len(idx),
		Days:           len(spans),
		Instruments:    instruments,
		TotalPnL:       decimalSum(barPnL),
		MeanBarPnL:     decimal.NewFromFloat(gctmath.ArithmeticAverage(barPnL)),
		StdDevBarPnL:   decimal.NewFromFloat(gctmath.SampleStandardDeviation(barPnL)),
		MeanDailyPnL:   decimal.NewFromFloat(gctmath.ArithmeticAverage(daily)),
		StdDevDailyPnL: decimal.NewFromFloat(gctmath.SampleStandardDeviation(daily)),
		MaxDrawdown:    decimal.NewFromFloat(gctmath.MaximumDrawdown(barPnL)),
		HitRate:        decimal.NewFromFloat(gctmath.HitRate(barPnL)),
		GrossVolume:    decimalSum(gctmath.DropNaN(gross)),
		AverageGMV:     decimal.NewFromFloat(gctmath.ArithmeticAverage(gctmath.DropNaN(gmv))),
	}
	if sharpe := gctmath.CalculateSharpeRatio(daily, 0); sharpe != 0 {
		resp.SharpeRatio = decimal.NewFromFloat(sharpe * math.Sqrt(TradingDaysPerYear))
		resp.HasSharpeRatio = true
	}
	if resp.AverageGMV.IsPositive() {
		meanDailyGross := decimal.NewFromFloat(gctmath.ArithmeticAverage(dailyGross))
		resp.Turnover = meanDailyGross.Div(resp.AverageGMV)
	}
	if _, ok := stats.ColumnIndex(finance.TC); ok {
		tc, err := column(stats, finance.TC)
		if err != nil {
			return nil, err
		}
		resp.TransactionCosts = decimalSum(gctmath.DropNaN(tc))
		resp.HasCosts = true
	}
	return resp, nil
}

// PrintResults logs the summary line by line to the report sub logger
func (s *Summary) PrintResults() {
	log.Info(log.ReportMgr, "------------------Evaluation Results------------------------")
	log.Infof(log.ReportMgr, "Period: %v to %v", s.Start, s.End)
	log.Infof(log.ReportMgr, "Bars: %v Days: %v Instruments: %v", s.Bars, s.Days, s.Instruments)
	for _, row := range s.rows() {
		log.Infof(log.ReportMgr, "%v: %v", row[0], row[1])
	}
}

// String renders the summary as a two column table
func (s *Summary) String() string {
	tw := prettytable.NewWriter()
	tw.SetStyle(prettytable.StyleLight)
	tw.SetTitle(fmt.Sprintf("%v to %v", s.Start.Format(common.SimpleTimeFormat), s.End.Format(common.SimpleTimeFormat)))
	tw.AppendHeader(prettytable.Row{"metric", "value"})
	tw.AppendRow(prettytable.Row{"Bars", convert.IntToHumanFriendlyString(int64(s.Bars))})
	tw.AppendRow(prettytable.Row{"Days", convert.IntToHumanFriendlyString(int64(s.Days))})
	tw.AppendRow(prettytable.Row{"Instruments", convert.IntToHumanFriendlyString(int64(s.Instruments))})
	for _, row := range s.rows() {
		tw.AppendRow(prettytable.Row{row[0], row[1]})
	}
	tw.SetColumnConfigs([]prettytable.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return tw.Render()
}

// WriteJSON writes the summary to path as indented JSON
func (s *Summary) WriteJSON(path string) error {
	if s == nil {
		return errNilSummary
	}
	if path == "" {
		return errNoFilePath
	}
	data, err := json.MarshalIndent(s, "", " ")
	if err != nil {
		return err
	}
	return file.Write(path, data)
}

func (s *Summary) rows() [][2]string {
	sharpe := "n/a"
	if s.HasSharpeRatio {
		sharpe = convert.DecimalToHumanFriendlyString(s.SharpeRatio, int(roundTo2))
	}
	rows := [][2]string{
		{"Total PnL", convert.DecimalToHumanFriendlyString(s.TotalPnL, int(roundTo2))},
		{"Mean bar PnL", convert.DecimalToHumanFriendlyString(s.MeanBarPnL, int(roundTo2))},
		{"Stddev bar PnL", convert.DecimalToHumanFriendlyString(s.StdDevBarPnL, int(roundTo2))},
		{"Mean daily PnL", convert.DecimalToHumanFriendlyString(s.MeanDailyPnL, int(roundTo2))},
		{"Stddev daily PnL", convert.DecimalToHumanFriendlyString(s.StdDevDailyPnL, int(roundTo2))},
		{"Sharpe ratio", sharpe},
		{"Max drawdown", convert.DecimalToHumanFriendlyString(s.MaxDrawdown, int(roundTo2))},
		{"Hit rate", s.HitRate.Mul(decimal.NewFromInt(100)).StringFixed(roundTo2) + "%"},
		{"Gross volume", convert.DecimalToHumanFriendlyString(s.GrossVolume, 0)},
		{"Average GMV", convert.DecimalToHumanFriendlyString(s.AverageGMV, 0)},
		{"Turnover", s.Turnover.StringFixed(roundTo2)},
	}
	if s.HasCosts {
		rows = append(rows, [2]string{"Transaction costs", convert.DecimalToHumanFriendlyString(s.TransactionCosts, int(roundTo2))})
	}
	return rows
}

// column returns a statistics column, rejecting infinite values which
// cannot be represented as decimals
func column(stats *table.Frame, name string) ([]float64, error) {
	c, err := stats.Column(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMissingStat, name)
	}
	for i := range c {
		if math.IsInf(c[i], 0) {
			return nil, fmt.Errorf("%w: %v at %v", ErrNonFiniteStat, name, stats.Index()[i])
		}
	}
	return c, nil
}

func sum(values []float64) float64 {
	var total float64
	for i := range values {
		if !math.IsNaN(values[i]) {
			total += values[i]
		}
	}
	return total
}

func decimalSum(values []float64) decimal.Decimal {
	total := decimal.Zero
	for i := range values {
		total = total.Add(decimal.NewFromFloat(values[i]))
	}
	return total
}
