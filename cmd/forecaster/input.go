package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/common/file"
	"github.com/thrasher-corp/forecaster/config"
	"github.com/thrasher-corp/forecaster/database"
	"github.com/thrasher-corp/forecaster/database/drivers/postgres"
	sqlite "github.com/thrasher-corp/forecaster/database/drivers/sqlite3"
	"github.com/thrasher-corp/forecaster/database/migration"
	"github.com/thrasher-corp/forecaster/database/repository/forecastbar"
	"github.com/thrasher-corp/forecaster/evaluator"
	"github.com/thrasher-corp/forecaster/finance"
	"github.com/thrasher-corp/forecaster/log"
	"github.com/thrasher-corp/forecaster/table"
)

const (
	sourceCSV      = "csv"
	sourceDatabase = "db"
)

var errUnknownSource = errors.New("unknown input source")

var sourceFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "source",
		Usage: "where input fields are read from, 'csv' for the configured input directory or 'db'",
		Value: sourceCSV,
	},
	&cli.StringFlag{
		Name:  "start",
		Usage: "the first bar read from the database, in the configured timezone",
		Value: time.Now().AddDate(0, -1, 0).Format(common.SimpleTimeFormat),
	},
	&cli.StringFlag{
		Name:  "end",
		Usage: "the last bar read from the database, in the configured timezone",
		Value: time.Now().Format(common.SimpleTimeFormat),
	},
}

// loadInput returns the configured evaluator and its input from the source
// selected on the command line
func loadInput(c *cli.Context) (*evaluator.ForecastEvaluator, *table.MultiFrame, error) {
	e, err := evaluator.New(cfg.Columns)
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	var df *table.MultiFrame
	switch c.String("source") {
	case sourceCSV:
		df, err = readInputDir(cfg.Data.InputDir, inputFields(cfg), loc)
	case sourceDatabase:
		df, err = loadFromDatabase(c, loc)
	default:
		err = fmt.Errorf("%w: %q", errUnknownSource, c.String("source"))
	}
	if err != nil {
		return nil, nil, err
	}
	df, err = withVolatility(df, cfg.Columns, cfg.Volatility)
	if err != nil {
		return nil, nil, err
	}
	return e, df, nil
}

// inputField is a field read from the input directory
type inputField struct {
	name     string
	optional bool
}

func inputFields(c *config.Config) []inputField {
	fields := []inputField{
		{name: c.Columns.Price},
		{name: c.Columns.Volatility, optional: c.Volatility.Estimate},
		{name: c.Columns.Prediction},
	}
	for _, name := range []string{c.Columns.Spread, c.Columns.BuyPrice, c.Columns.SellPrice} {
		if name != "" {
			fields = append(fields, inputField{name: name})
		}
	}
	return fields
}

// readInputDir reads dir/<field>.csv for every field. Every frame is aligned
// to the bars of the first one read
func readInputDir(dir string, fields []inputField, loc *time.Location) (*table.MultiFrame, error) {
	var resp *table.MultiFrame
	for _, field := range fields {
		path := filepath.Join(dir, field.name+".csv")
		if !file.Exists(path) {
			if field.optional {
				continue
			}
			return nil, fmt.Errorf("%w: %v", evaluator.ErrMissingField, path)
		}
		f, err := readCSVFile(path, loc)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			if resp, err = table.NewMultiFrame(f.Index()); err != nil {
				return nil, err
			}
		} else if f, err = f.Reindex(resp.Index()); err != nil {
			return nil, err
		}
		if err = resp.AddField(field.name, f); err != nil {
			return nil, fmt.Errorf("%v: %w", path, err)
		}
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no fields in %v", evaluator.ErrMissingField, dir)
	}
	log.Infof(log.DataMgr, "read %d fields of %d bars and %d instruments from %v",
		len(resp.Fields()), resp.Len(), len(resp.Instruments()), dir)
	return resp, nil
}

func readCSVFile(path string, loc *time.Location) (*table.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	f, err := table.ReadCSV(fh, loc)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return f, nil
}

// withVolatility adds an estimated volatility field when the input has none
// and estimation is enabled
func withVolatility(df *table.MultiFrame, cols evaluator.Columns, settings config.VolatilitySettings) (*table.MultiFrame, error) {
	if df.HasField(cols.Volatility) || !settings.Estimate {
		return df, nil
	}
	price, err := df.Field(cols.Price)
	if err != nil {
		return nil, err
	}
	vol, err := finance.EstimateVolatility(price, settings.Period)
	if err != nil {
		return nil, err
	}
	if err = df.AddField(cols.Volatility, vol); err != nil {
		return nil, err
	}
	log.Infof(log.DataMgr, "estimated %v from %v with period %d", cols.Volatility, cols.Price, settings.Period)
	return df, nil
}

func loadFromDatabase(c *cli.Context, loc *time.Location) (*table.MultiFrame, error) {
	start, err := time.ParseInLocation(common.SimpleTimeFormat, c.String("start"), loc)
	if err != nil {
		return nil, err
	}
	end, err := time.ParseInLocation(common.SimpleTimeFormat, c.String("end"), loc)
	if err != nil {
		return nil, err
	}
	db, err := connectDatabase()
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, 6)
	for _, f := range inputFields(cfg) {
		fields = append(fields, f.name)
	}
	return forecastbar.Load(c.Context, db, start, end, loc, fields...)
}

// connectDatabase connects the global database instance with the configured
// driver and applies any pending migration
func connectDatabase() (*database.Instance, error) {
	if !cfg.Database.Enabled {
		return nil, database.ErrDatabaseSupportDisabled
	}
	if database.DB.IsConnected() {
		return database.DB, nil
	}
	dbCfg := cfg.Database
	if err := database.DB.SetConfig(&dbCfg); err != nil {
		return nil, err
	}
	var err error
	switch database.DB.Dialect() {
	case database.DBSQLite3:
		database.DB.DataPath = cfg.Data.LogDir
		if err = os.MkdirAll(database.DB.DataPath, file.DefaultPermissionOctal); err != nil {
			return nil, err
		}
		_, err = sqlite.Connect(database.DB)
	case database.DBPostgreSQL:
		_, err = postgres.Connect(database.DB)
	default:
		err = fmt.Errorf("%w: %v", database.ErrInvalidDriver, dbCfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	log.Infof(log.DatabaseMgr, "connected to %v database %v", database.DB.Dialect(), dbCfg.Database)
	return database.DB, migration.Up(database.DB, dbCfg.MigrationDir)
}
