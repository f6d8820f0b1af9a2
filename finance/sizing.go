package finance

import (
	"fmt"
	"math"
	"sort"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/table"
)

// Validate checks the sizing parameters are usable
func (s *SizingConfig) Validate() error {
	switch {
	case s.TargetGMV < 0:
		return fmt.Errorf("%w: target GMV %v cannot be negative", ErrInvalidSizingConfig, s.TargetGMV)
	case s.TargetDollarRiskPerName < 0:
		return fmt.Errorf("%w: target dollar risk per name %v cannot be negative", ErrInvalidSizingConfig, s.TargetDollarRiskPerName)
	case s.BulkFracToRemove < 0 || s.BulkFracToRemove >= 1:
		return fmt.Errorf("%w: bulk fraction to remove %v must be in [0, 1)", ErrInvalidSizingConfig, s.BulkFracToRemove)
	case s.PredictionAbsThreshold < 0:
		return fmt.Errorf("%w: prediction threshold %v cannot be negative", ErrInvalidSizingConfig, s.PredictionAbsThreshold)
	case s.VolatilityLowerBound < 0:
		return fmt.Errorf("%w: volatility lower bound %v cannot be negative", ErrInvalidSizingConfig, s.VolatilityLowerBound)
	case s.VolatilityToSpreadThreshold < 0:
		return fmt.Errorf("%w: volatility to spread threshold %v cannot be negative", ErrInvalidSizingConfig, s.VolatilityToSpreadThreshold)
	}
	return nil
}

// volAdjust returns p/v, treating non positive volatility as missing
func volAdjust(p, v float64) float64 {
	if math.IsNaN(p) || math.IsNaN(v) || v <= 0 {
		return math.NaN()
	}
	return p / v
}

// ComputeTargetPositionsCrossSectionally sizes every bar jointly: volatility
// adjusted predictions are optionally thinned then scaled so the bar's gross
// market value equals TargetGMV
func ComputeTargetPositionsCrossSectionally(prediction, volatility *table.Frame, cfg SizingConfig) (*table.Frame, error) {
	if prediction == nil || volatility == nil {
		return nil, common.ErrNilArguments
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	adjusted, err := table.Combine(prediction, volatility, volAdjust)
	if err != nil {
		return nil, err
	}
	if cfg.BulkFracToRemove > 0 {
		removeBulk(adjusted, cfg.BulkFracToRemove)
	}
	gross := adjusted.Abs().RowSum(1)
	return adjusted.MapIndexed(func(row, _ int, v float64) float64 {
		switch {
		case math.IsNaN(gross[row]), math.IsNaN(v):
			return math.NaN()
		case gross[row] == 0:
			return 0
		}
		return v / gross[row] * cfg.TargetGMV
	}), nil
}

// removeBulk zeroes the frac share of valid names with the smallest absolute
// value on every row
func removeBulk(f *table.Frame, frac float64) {
	cols := make([]int, 0, f.Width())
	for row := 0; row < f.Len(); row++ {
		cols = cols[:0]
		for col := 0; col < f.Width(); col++ {
			if !math.IsNaN(f.At(row, col)) {
				cols = append(cols, col)
			}
		}
		n := int(math.Floor(frac * float64(len(cols))))
		if n == 0 {
			continue
		}
		sort.SliceStable(cols, func(i, j int) bool {
			return math.Abs(f.At(row, cols[i])) < math.Abs(f.At(row, cols[j]))
		})
		for _, col := range cols[:n] {
			f.Set(row, col, 0)
		}
	}
}

// ComputeTargetPositionsLongitudinally sizes every name independently through
// time with a fixed dollar risk budget. spread may be nil
func ComputeTargetPositionsLongitudinally(prediction, volatility, spread *table.Frame, cfg SizingConfig) (*table.Frame, error) {
	if prediction == nil || volatility == nil {
		return nil, common.ErrNilArguments
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := table.CheckCongruent(prediction, volatility); err != nil {
		return nil, err
	}
	if spread != nil {
		if err := table.CheckCongruent(prediction, spread); err != nil {
			return nil, err
		}
	}
	return prediction.MapIndexed(func(row, col int, p float64) float64 {
		if math.IsNaN(p) {
			return p
		}
		if math.Abs(p) < cfg.PredictionAbsThreshold {
			p = 0
		}
		v := volatility.At(row, col)
		if !math.IsNaN(v) && v < cfg.VolatilityLowerBound {
			v = cfg.VolatilityLowerBound
		}
		if spread != nil && cfg.VolatilityToSpreadThreshold > 0 {
			if s := spread.At(row, col); s > 0 && v/s < cfg.VolatilityToSpreadThreshold {
				p = 0
			}
		}
		signal := table.Sign(p)
		if cfg.ModulateUsingPredictionMagnitude {
			signal = p
		}
		if signal == 0 && !math.IsNaN(v) {
			return 0
		}
		return cfg.TargetDollarRiskPerName * volAdjust(signal, v)
	}), nil
}
