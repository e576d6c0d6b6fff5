// Package statistics derives return and volatility figures from price series.
package statistics

import (
	"fmt"
	"time"

	"github.com/aristath/portfolio-analytics/internal/timeseries"
	"github.com/aristath/portfolio-analytics/pkg/formulas"
)

// AnnualizedHorizons are the CAGR look-back periods in years.
var AnnualizedHorizons = []int{1, 3, 5, 10}

// AnnualReturn computes December-to-December returns keyed by year.
//
// The previous December starts at 1.0 and the first computed year is discarded,
// so two Decembers are needed before any year is reported.
func AnnualReturn(monthly *timeseries.Series) map[int]float64 {
	result := make(map[int]float64)
	prevDecember := 1.0
	firstYear, seen := 0, false

	for date, value := range monthly.Ascending() {
		if date.Month() != time.December {
			continue
		}
		if prevDecember != 0 {
			result[date.Year()] = (value - prevDecember) / prevDecember * 100
		}
		if !seen {
			firstYear, seen = date.Year(), true
		}
		prevDecember = value
	}

	if seen {
		delete(result, firstYear)
	}
	return result
}

// AnnualizedReturns computes CAGR for each horizon in AnnualizedHorizons, keyed "<p> Year".
// A horizon with no observation at or before its boundary is omitted.
func AnnualizedReturns(monthly *timeseries.Series) map[string]float64 {
	result := make(map[string]float64)
	latest, ok := monthly.Latest()
	if !ok {
		return result
	}

	for _, years := range AnnualizedHorizons {
		boundary := latest.Date.AddYears(-years)
		for date, value := range monthly.Descending() {
			if date.After(boundary) {
				continue
			}
			if value > 0 {
				result[HorizonLabel(years)] = formulas.CAGR(latest.Price, value, years)
			}
			break
		}
	}
	return result
}

// HorizonLabel formats a CAGR horizon key.
func HorizonLabel(years int) string {
	return fmt.Sprintf("%d Year", years)
}
