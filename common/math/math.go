package math

import "math"

// DropNaN returns the non-NaN values of the supplied slice in order
func DropNaN(values []float64) []float64 {
	resp := make([]float64, 0, len(values))
	for i := range values {
		if !math.IsNaN(values[i]) {
			resp = append(resp, values[i])
		}
	}
	return resp
}

// RoundFloat rounds your floating point number to the desired decimal place
func RoundFloat(x float64, prec int) float64 {
	pow := math.Pow(10, float64(prec))
	return math.Round(x*pow) / pow
}

// ArithmeticAverage is the basic form of calculating an average.
// Divide the sum of all values by the length of values
func ArithmeticAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumOfValues float64
	for x := range values {
		sumOfValues += values[x]
	}
	return sumOfValues / float64(len(values))
}

// PopulationStandardDeviation calculates standard deviation using population based calculation
func PopulationStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := ArithmeticAverage(values)
	var combined float64
	for x := range values {
		combined += (values[x] - avg) * (values[x] - avg)
	}
	return math.Sqrt(combined / float64(len(values)))
}

// SampleStandardDeviation standard deviation is a statistic that
// measures the dispersion of a dataset relative to its mean and
// is calculated as the square root of the variance
func SampleStandardDeviation(vals []float64) float64 {
	if len(vals) <= 1 {
		return 0
	}
	mean := ArithmeticAverage(vals)
	var combined float64
	for i := range vals {
		combined += (vals[i] - mean) * (vals[i] - mean)
	}
	return math.Sqrt(combined / float64(len(vals)-1))
}

// CalculateSharpeRatio returns the per period sharpe ratio of a series of
// returns compared to a per period risk-free rate
func CalculateSharpeRatio(movementPerCandle []float64, riskFreeRate float64) float64 {
	if len(movementPerCandle) <= 1 {
		return 0
	}
	excessReturns := make([]float64, len(movementPerCandle))
	for i := range movementPerCandle {
		excessReturns[i] = movementPerCandle[i] - riskFreeRate
	}
	standardDeviation := SampleStandardDeviation(excessReturns)
	if standardDeviation == 0 {
		return 0
	}
	return ArithmeticAverage(excessReturns) / standardDeviation
}

// MaximumDrawdown returns the largest peak to trough fall of the cumulative
// sum of the supplied per period values, as a non-negative amount
func MaximumDrawdown(values []float64) float64 {
	var cumulative, peak, drawdown float64
	for i := range values {
		cumulative += values[i]
		if cumulative > peak {
			peak = cumulative
		}
		if peak-cumulative > drawdown {
			drawdown = peak - cumulative
		}
	}
	return drawdown
}

// HitRate returns the fraction of non-zero values which are positive
func HitRate(values []float64) float64 {
	var hits, total float64
	for i := range values {
		if values[i] == 0 {
			continue
		}
		total++
		if values[i] > 0 {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return hits / total
}
