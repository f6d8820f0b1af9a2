package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/common/file"
	"github.com/thrasher-corp/forecaster/database"
	"github.com/thrasher-corp/forecaster/evaluator"
	"github.com/thrasher-corp/forecaster/log"
)

// DefaultConfig returns a config which evaluates the price, volatility and
// prediction fields of a CSV input directory
func DefaultConfig() Config {
	return Config{
		Nickname: "forecaster",
		Columns: evaluator.Columns{
			Price:      "price",
			Volatility: "volatility",
			Prediction: "prediction",
		},
		Portfolio: evaluator.DefaultPortfolioOptions(),
		Volatility: VolatilitySettings{
			Period: DefaultVolatilityPeriod,
		},
		Data: DataSettings{
			InputDir: "data",
			LogDir:   "logs",
			Timezone: common.DefaultTimezone,
		},
		Database: database.Config{
			Driver:       database.DBSQLite3,
			MigrationDir: database.MigrationDir,
		},
		Logging: log.GenDefaultSettings(),
	}
}

// ReadConfigFromFile will take a config from a path. The format follows the
// file extension
func ReadConfigFromFile(path string) (*Config, error) {
	if !file.Exists(path) {
		return nil, fmt.Errorf("%w: %v", errConfigNotFound, path)
	}
	fileData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadConfig(fileData, strings.TrimPrefix(filepath.Ext(path), "."))
}

// LoadConfig layers data of the supplied format over DefaultConfig and
// applies environment overrides. Empty data yields the defaults with
// overrides applied
func LoadConfig(data []byte, configType string) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v, DefaultConfig()); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if len(data) > 0 {
		if configType == "" {
			configType = DefaultConfigType
		}
		v.SetConfigType(configType)
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("reading %v config: %w", configType, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	log.Debugf(log.ConfigMgr, "loaded config %q", c.Nickname)
	return &c, nil
}

// setDefaults registers every leaf of the default config so unset keys fall
// back to it and environment overrides resolve for nested keys
func setDefaults(v *viper.Viper, defaults Config) error {
	data, err := json.Marshal(defaults)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err = json.Unmarshal(data, &tree); err != nil {
		return err
	}
	setLeaves(v, "", tree)
	return nil
}

func setLeaves(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setLeaves(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Validate checks all config settings
func (c *Config) Validate() error {
	if c == nil {
		return errNilConfig
	}
	if _, err := evaluator.New(c.Columns); err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	if err := c.Portfolio.Validate(); err != nil {
		return fmt.Errorf("portfolio: %w", err)
	}
	if c.Volatility.Estimate && c.Volatility.Period <= 0 {
		return fmt.Errorf("%w: %d", errInvalidVolatilityPeriod, c.Volatility.Period)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return c.validateDatabase()
}

func (c *Config) validateDatabase() error {
	if !c.Database.Enabled {
		return nil
	}
	if database.GetSQLDialect(c.Database.Driver) == database.DBInvalidDriver {
		return fmt.Errorf("%w: %q", database.ErrInvalidDriver, c.Database.Driver)
	}
	if c.Database.Database == "" {
		return errNoDatabaseName
	}
	return nil
}

// Location returns the configured timezone
func (c *Config) Location() (*time.Location, error) {
	tz := c.Data.Timezone
	if tz == "" {
		tz = common.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", errInvalidTimezone, tz, err)
	}
	return loc, nil
}

// ReadOptions returns the options reading a logged portfolio with this config
func (c *Config) ReadOptions(fileName string) (evaluator.ReadOptions, error) {
	loc, err := c.Location()
	if err != nil {
		return evaluator.ReadOptions{}, err
	}
	return evaluator.ReadOptions{
		FileName:          fileName,
		Location:          loc,
		CastAssetIDsToInt: c.Data.CastAssetIDsToInt,
	}, nil
}
