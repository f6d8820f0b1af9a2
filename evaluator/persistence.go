package evaluator

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/common/convert"
	"github.com/thrasher-corp/forecaster/common/file"
	"github.com/thrasher-corp/forecaster/log"
	"github.com/thrasher-corp/forecaster/table"
)

// loggedFields is the read order of a logged portfolio; optional fields are
// read when present
var loggedFields = []struct {
	name     string
	required bool
}{
	{PriceField, false},
	{VolatilityField, false},
	{PredictionField, false},
	{HoldingsField, true},
	{PositionField, true},
	{FlowField, true},
	{PnLField, true},
	{SpreadField, false},
}

// LogPortfolio evaluates df and writes every annotated field and the
// statistics to logDir/<field>/<last bar>.csv, returning the file name
func (e *ForecastEvaluator) LogPortfolio(df *table.MultiFrame, logDir string, opts PortfolioOptions) (string, error) {
	if logDir == "" {
		return "", errNoLogDir
	}
	annotated, stats, err := e.AnnotateForecasts(df, opts)
	if err != nil {
		return "", err
	}
	return LogAnnotated(annotated, stats, logDir)
}

// LogAnnotated writes the output of AnnotateForecasts to
// logDir/<field>/<last bar>.csv, returning the file name
func LogAnnotated(annotated *table.MultiFrame, stats *table.Frame, logDir string) (string, error) {
	if logDir == "" {
		return "", errNoLogDir
	}
	if annotated == nil || stats == nil {
		return "", common.ErrNilArguments
	}
	if annotated.Len() == 0 {
		return "", fmt.Errorf("%w: nothing left to log after burn in", errEmptyInput)
	}
	idx := annotated.Index()
	fileName := idx[len(idx)-1].Format(common.LogFileTimeFormat) + csvExtension
	for _, name := range annotated.Fields() {
		f, err := annotated.Field(name)
		if err != nil {
			return "", err
		}
		if err = file.WriteAsCSV(filepath.Join(logDir, name, fileName), f.CSVRecords()); err != nil {
			return "", fmt.Errorf("logging %v: %w", name, err)
		}
	}
	if err := file.WriteAsCSV(filepath.Join(logDir, StatisticsField, fileName), stats.CSVRecords()); err != nil {
		return "", fmt.Errorf("logging %v: %w", StatisticsField, err)
	}
	log.Infof(log.Evaluator, "logged portfolio of %d bars to %v as %v", annotated.Len(), logDir, fileName)
	return fileName, nil
}

// ReadPortfolio reads a portfolio written by LogPortfolio, returning the
// annotated table and its statistics
func ReadPortfolio(logDir string, opts ReadOptions) (*table.MultiFrame, *table.Frame, error) {
	if logDir == "" {
		return nil, nil, errNoLogDir
	}
	fileName := opts.FileName
	if fileName == "" {
		var err error
		if fileName, err = file.LatestFile(filepath.Join(logDir, PnLField), csvExtension); err != nil {
			return nil, nil, err
		}
	}
	loc := opts.Location
	if loc == nil {
		var err error
		if loc, err = time.LoadLocation(common.DefaultTimezone); err != nil {
			return nil, nil, err
		}
	}

	var resp *table.MultiFrame
	for _, lf := range loggedFields {
		path := filepath.Join(logDir, lf.name, fileName)
		if !file.Exists(path) {
			if lf.required {
				return nil, nil, fmt.Errorf("%w: %v", ErrMissingField, path)
			}
			continue
		}
		f, err := readLoggedFrame(path, loc, opts.CastAssetIDsToInt)
		if err != nil {
			return nil, nil, err
		}
		if resp == nil {
			if resp, err = table.NewMultiFrame(f.Index()); err != nil {
				return nil, nil, err
			}
		}
		if err = resp.AddField(lf.name, f); err != nil {
			return nil, nil, fmt.Errorf("%v: %w", path, err)
		}
	}
	stats, err := readLoggedFrame(filepath.Join(logDir, StatisticsField, fileName), loc, false)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf(log.Evaluator, "read portfolio %v of %d bars from %v", fileName, resp.Len(), logDir)
	return resp, stats, nil
}

func readLoggedFrame(path string, loc *time.Location, castToInt bool) (*table.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	f, err := table.ReadCSV(fh, loc)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	if !castToInt {
		return f, nil
	}
	return f.RenameColumns(convert.CanonicalIntString)
}
