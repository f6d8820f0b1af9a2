package config

import (
	"errors"

	"github.com/thrasher-corp/forecaster/database"
	"github.com/thrasher-corp/forecaster/evaluator"
	"github.com/thrasher-corp/forecaster/log"
)

const (
	// EnvPrefix prefixes every environment override, FORECASTER_PORTFOLIO_STYLE
	// overrides portfolio.style
	EnvPrefix = "FORECASTER"
	// DefaultConfigType is assumed for config data without a file extension
	DefaultConfigType = "json"
	// DefaultVolatilityPeriod is the EMA period used when estimating volatility
	DefaultVolatilityPeriod = 20
)

var (
	errConfigNotFound          = errors.New("config file not found")
	errInvalidVolatilityPeriod = errors.New("volatility period must be greater than zero")
	errInvalidTimezone         = errors.New("invalid timezone")
	errNoDatabaseName          = errors.New("database name must be set when database support is enabled")
	errNilConfig               = errors.New("config is nil")
)

// Config holds every setting of an evaluation run
type Config struct {
	Nickname   string                     `json:"nickname" mapstructure:"nickname"`
	Columns    evaluator.Columns          `json:"columns" mapstructure:"columns"`
	Portfolio  evaluator.PortfolioOptions `json:"portfolio" mapstructure:"portfolio"`
	Volatility VolatilitySettings         `json:"volatility" mapstructure:"volatility"`
	Data       DataSettings               `json:"data" mapstructure:"data"`
	Database   database.Config            `json:"database" mapstructure:"database"`
	Logging    log.Config                 `json:"logging" mapstructure:"logging"`
}

// VolatilitySettings controls volatility estimation from prices when the
// input carries no volatility field
type VolatilitySettings struct {
	Estimate bool `json:"estimate" mapstructure:"estimate"`
	Period   int  `json:"period" mapstructure:"period"`
}

// DataSettings locates inputs and outputs
type DataSettings struct {
	// InputDir holds one <field>.csv frame per input field
	InputDir string `json:"inputDir" mapstructure:"inputDir"`
	// LogDir is the root of logged portfolios
	LogDir string `json:"logDir" mapstructure:"logDir"`
	// ReportDir receives JSON run summaries when set
	ReportDir         string `json:"reportDir" mapstructure:"reportDir"`
	Timezone          string `json:"timezone" mapstructure:"timezone"`
	CastAssetIDsToInt bool   `json:"castAssetIDsToInt" mapstructure:"castAssetIDsToInt"`
}
