package evaluator

import (
	"errors"
	"time"

	"github.com/thrasher-corp/forecaster/finance"
	"github.com/thrasher-corp/forecaster/table"
)

// Style selects the target position sizing policy
type Style string

// Supported sizing styles
const (
	CrossSectional Style = "cross_sectional"
	Longitudinal   Style = "longitudinal"
)

// Output and log field names
const (
	PriceField      = "price"
	VolatilityField = "volatility"
	PredictionField = "prediction"
	SpreadField     = "spread"
	HoldingsField   = "holdings"
	PositionField   = "position"
	FlowField       = "flow"
	PnLField        = "pnl"
	StatisticsField = "statistics"
)

const (
	// MaxUnderfillIterations bounds the underfill adjustment loop
	MaxUnderfillIterations = 100
	// PriceFFillLimit is the number of consecutive missing prices carried
	// forward when pricing flows and positions
	PriceFFillLimit = 5
	// HoldingsFFillLimit is the number of consecutive missing holdings
	// carried forward within a day when positions are held overnight
	HoldingsFFillLimit = 5
	// csvExtension is the extension of logged portfolio files
	csvExtension = ".csv"
	// timeOfDayFormat groups bars in ComputeCounts
	timeOfDayFormat = "15:04:05"
)

var (
	// ErrInvalidStyle is returned for an unsupported sizing style
	ErrInvalidStyle = errors.New("invalid style")
	// ErrInvalidQuantization is returned for an unsupported quantization
	ErrInvalidQuantization = finance.ErrInvalidQuantization
	// ErrMissingField is returned when a configured field is absent from the input
	ErrMissingField = errors.New("missing field")
	// ErrUnderfillNotConverged is returned when underfill adjustment does
	// not settle within MaxUnderfillIterations
	ErrUnderfillNotConverged = errors.New("underfill adjustment did not converge")
	// ErrNoActiveBars is returned when no bar carries both prices and signals
	ErrNoActiveBars = errors.New("no active bars")

	errEmptyColumnName         = errors.New("required column name cannot be empty")
	errIncompleteExecutionCols = errors.New("buy and sell price columns must be configured together")
	errDuplicateColumnName     = errors.New("column names must be unique")
	errNegativeBurnIn          = errors.New("burn in cannot be negative")
	errNoLogDir                = errors.New("no log directory provided")
	errEmptyInput              = errors.New("input has no bars")
)

// Columns names the input fields consumed by the evaluator. Spread, BuyPrice
// and SellPrice are optional
type Columns struct {
	Price      string `json:"price" mapstructure:"price"`
	Volatility string `json:"volatility" mapstructure:"volatility"`
	Prediction string `json:"prediction" mapstructure:"prediction"`
	Spread     string `json:"spread" mapstructure:"spread"`
	BuyPrice   string `json:"buyPrice" mapstructure:"buyPrice"`
	SellPrice  string `json:"sellPrice" mapstructure:"sellPrice"`
}

// ForecastEvaluator simulates trading a forecast with one bar execution delay
// and accounts the resulting holdings, flows, positions and pnl
type ForecastEvaluator struct {
	cols Columns
}

// PortfolioOptions controls a single evaluation
type PortfolioOptions struct {
	Style                Style                `json:"style" mapstructure:"style"`
	Quantization         finance.Quantization `json:"quantization" mapstructure:"quantization"`
	LiquidateAtEndOfDay  bool                 `json:"liquidateAtEndOfDay" mapstructure:"liquidateAtEndOfDay"`
	ReindexLikeInput     bool                 `json:"reindexLikeInput" mapstructure:"reindexLikeInput"`
	BurnInBars           int                  `json:"burnInBars" mapstructure:"burnInBars"`
	BurnInDays           int                  `json:"burnInDays" mapstructure:"burnInDays"`
	ComputeExtendedStats bool                 `json:"computeExtendedStats" mapstructure:"computeExtendedStats"`
	Sizing               finance.SizingConfig `json:"sizing" mapstructure:"sizing"`
}

// Portfolio holds the per instrument results and per bar statistics of an
// evaluation. Every frame shares one index
type Portfolio struct {
	Holdings  *table.Frame
	Positions *table.Frame
	Flows     *table.Frame
	PnL       *table.Frame
	Stats     *table.Frame
}

// ReadOptions controls reading a logged portfolio
type ReadOptions struct {
	// FileName selects the logged file, empty selects the latest
	FileName string
	// Location localises the logged wall clock timestamps, nil defaults to
	// common.DefaultTimezone
	Location          *time.Location
	CastAssetIDsToInt bool
}

// Counts holds per field valid cell counts grouped by time of day
type Counts struct {
	TimesOfDay []string
	Fields     []string
	// Values maps a field to one count per time of day
	Values map[string][]int
}

// prepared is the validated, trimmed and aligned input of an evaluation
type prepared struct {
	data       *table.MultiFrame
	price      *table.Frame
	volatility *table.Frame
	prediction *table.Frame
	spread     *table.Frame
	buy        *table.Frame
	sell       *table.Frame
}

type namedFrame struct {
	name  string
	frame *table.Frame
}
