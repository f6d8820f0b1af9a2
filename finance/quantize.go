package finance

import (
	"fmt"
	"math"

	"github.com/thrasher-corp/forecaster/common"
	"github.com/thrasher-corp/forecaster/table"
)

// Validate returns ErrInvalidQuantization for unsupported values
func (q Quantization) Validate() error {
	switch q {
	case NoQuantization, NearestShare, NearestLot:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidQuantization, q)
}

// Quantize rounds share counts per the policy. Halves round to even
func Quantize(shares *table.Frame, q Quantization) (*table.Frame, error) {
	if shares == nil {
		return nil, common.ErrNilArguments
	}
	switch q {
	case NoQuantization:
		return shares.Clone(), nil
	case NearestShare:
		return shares.Map(math.RoundToEven), nil
	case NearestLot:
		return shares.Map(func(v float64) float64 {
			return math.RoundToEven(v/LotSize) * LotSize
		}), nil
	}
	return nil, q.Validate()
}
