// Package aggregation synthesizes a portfolio-level price series from its constituents.
package aggregation

import (
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// Aggregate blends the constituents' series by weight (symbol -> percent).
//
// For each date in the union of the constituents' dates, the blended value is
// sum(weight/100 * price). A date is kept only when every weighted constituent has a
// price on it. Symbols with a zero weight do not participate. A weighted symbol with no
// series at all leaves the result empty.
func Aggregate(weights map[string]float64, series map[string]*timeseries.HistoricalPriceSeries) *timeseries.HistoricalPriceSeries {
	daily := make(map[string]*timeseries.Series, len(weights))
	monthly := make(map[string]*timeseries.Series, len(weights))
	for symbol, w := range weights {
		if w == 0 {
			continue
		}
		h := series[symbol]
		if h == nil {
			h = timeseries.NewHistoricalPriceSeries()
		}
		daily[symbol] = h.Daily
		monthly[symbol] = h.Monthly
	}

	return &timeseries.HistoricalPriceSeries{
		Daily:   blend(weights, daily),
		Monthly: blend(weights, monthly),
	}
}

func blend(weights map[string]float64, constituents map[string]*timeseries.Series) *timeseries.Series {
	out := timeseries.NewSeries()
	if len(constituents) == 0 {
		return out
	}

	union := make(map[timeseries.Date]struct{})
	for _, s := range constituents {
		for _, date := range s.Dates() {
			union[date] = struct{}{}
		}
	}

dates:
	for date := range union {
		value := 0.0
		for symbol, s := range constituents {
			price, ok := s.Get(date)
			if !ok {
				continue dates
			}
			value += weights[symbol] / 100 * price
		}
		out.Put(date, value)
	}
	return out
}
