package finance

import (
	"errors"

	"github.com/thrasher-corp/forecaster/table"
)

// Quantization determines how target share counts are rounded
type Quantization string

// Supported quantization policies
const (
	NoQuantization Quantization = "no_quantization"
	NearestShare   Quantization = "nearest_share"
	NearestLot     Quantization = "nearest_lot"
)

// LotSize is the number of shares in a round lot
const LotSize = 100

// DefaultSplitTolerance is the relative distance from an integer ratio
// accepted when inferring splits
const DefaultSplitTolerance = 0.02

// Statistics column names
const (
	PnL         = "pnl"
	GrossVolume = "gross_volume"
	NetVolume   = "net_volume"
	GMV         = "gmv"
	NMV         = "nmv"
	GPC         = "gpc"
	NPC         = "npc"
	WLC         = "wlc"
	TC          = "tc"
)

var (
	// ErrInvalidQuantization is returned for an unsupported quantization
	ErrInvalidQuantization = errors.New("invalid quantization")
	// ErrInvalidSizingConfig is returned when sizing parameters are out of range
	ErrInvalidSizingConfig = errors.New("invalid sizing config")

	errInvalidPeriod    = errors.New("period must be greater than zero")
	errInvalidTolerance = errors.New("tolerance must be between zero and one")
)

// SizingConfig holds the parameters of both target position sizing policies
type SizingConfig struct {
	// TargetGMV is the gross market value of every cross sectional bar
	TargetGMV float64 `json:"targetGMV" mapstructure:"targetGMV"`
	// BulkFracToRemove zeroes the fraction of names with the smallest
	// volatility adjusted prediction on every cross sectional bar
	BulkFracToRemove float64 `json:"bulkFracToRemove" mapstructure:"bulkFracToRemove"`
	// PredictionAbsThreshold zeroes longitudinal predictions below it in
	// absolute value
	PredictionAbsThreshold float64 `json:"predictionAbsThreshold" mapstructure:"predictionAbsThreshold"`
	// VolatilityLowerBound clips longitudinal volatility from below
	VolatilityLowerBound float64 `json:"volatilityLowerBound" mapstructure:"volatilityLowerBound"`
	// VolatilityToSpreadThreshold zeroes longitudinal names whose volatility
	// is too small relative to their spread
	VolatilityToSpreadThreshold float64 `json:"volatilityToSpreadThreshold" mapstructure:"volatilityToSpreadThreshold"`
	// TargetDollarRiskPerName is the longitudinal dollar risk per unit signal
	TargetDollarRiskPerName          float64 `json:"targetDollarRiskPerName" mapstructure:"targetDollarRiskPerName"`
	ModulateUsingPredictionMagnitude bool    `json:"modulateUsingPredictionMagnitude" mapstructure:"modulateUsingPredictionMagnitude"`
}

// StatsOptions toggles the optional statistics columns
type StatsOptions struct {
	Extended bool
	// Spread enables the transaction cost column when non nil
	Spread *table.Frame
}
