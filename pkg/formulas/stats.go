// Package formulas holds the small numeric building blocks used by the statistics module.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// SampleStdDev is the Bessel-corrected (n-1) standard deviation.
// Fewer than two observations yield NaN, as the estimator is undefined there.
func SampleStdDev(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	return stat.StdDev(data, nil)
}

// LogReturns returns ln(values[i]/values[i+1]) for consecutive pairs.
// The input is expected newest first, so the result is newest first as well.
func LogReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	out := make([]float64, len(values)-1)
	for i := 0; i < len(values)-1; i++ {
		out[i] = math.Log(values[i] / values[i+1])
	}
	return out
}

// AllFinite reports whether no value is NaN or infinite.
func AllFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Annualize scales a per-period standard deviation to a yearly percentage.
func Annualize(stdDev float64, periodsPerYear int) float64 {
	return stdDev * math.Sqrt(float64(periodsPerYear)) * 100
}

// CAGR returns the compound annual growth rate in percent between a start and end value.
func CAGR(endValue, startValue float64, years int) float64 {
	return (math.Pow(endValue/startValue, 1.0/float64(years)) - 1) * 100
}

// Round2 rounds to two decimal places, half away from zero (round(v*100)/100).
func Round2(v float64) float64 {
	return Round(v, 2)
}

// Round rounds a float64 to n decimal places
func Round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}
