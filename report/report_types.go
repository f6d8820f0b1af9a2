package report

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TradingDaysPerYear annualises daily ratios
const TradingDaysPerYear = 252

var roundTo2 int32 = 2

// ErrNonFiniteStat is returned when a statistic is infinite
var ErrNonFiniteStat = errors.New("statistic is not finite")

var (
	errNoBars      = errors.New("statistics hold no bars")
	errNilSummary  = errors.New("summary is nil")
	errNoFilePath  = errors.New("no report file path provided")
	errMissingStat = errors.New("statistics column missing")
)

// Summary is the headline performance of an evaluated portfolio
type Summary struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Bars        int       `json:"bars"`
	Days        int       `json:"days"`
	Instruments int       `json:"instruments"`

	TotalPnL       decimal.Decimal `json:"total-pnl"`
	MeanBarPnL     decimal.Decimal `json:"mean-bar-pnl"`
	StdDevBarPnL   decimal.Decimal `json:"stddev-bar-pnl"`
	MeanDailyPnL   decimal.Decimal `json:"mean-daily-pnl"`
	StdDevDailyPnL decimal.Decimal `json:"stddev-daily-pnl"`
	// SharpeRatio is the annualised ratio of daily pnl, valid only when
	// HasSharpeRatio is set
	SharpeRatio    decimal.Decimal `json:"sharpe-ratio"`
	HasSharpeRatio bool            `json:"has-sharpe-ratio"`
	MaxDrawdown    decimal.Decimal `json:"max-drawdown"`
	// HitRate is the fraction of bars with non zero pnl that were profitable
	HitRate     decimal.Decimal `json:"hit-rate"`
	GrossVolume decimal.Decimal `json:"gross-volume"`
	AverageGMV  decimal.Decimal `json:"average-gmv"`
	// Turnover is the mean daily gross volume over the average GMV
	Turnover         decimal.Decimal `json:"turnover"`
	TransactionCosts decimal.Decimal `json:"transaction-costs"`
	HasCosts         bool            `json:"has-costs"`
}
