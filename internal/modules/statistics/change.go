package statistics

import "github.com/aristath/portfolio-analytics/internal/timeseries"

// PercentageChange expresses every observation relative to the earliest one,
// (v - first) / first * 100. A series whose first value is zero yields an empty result.
func PercentageChange(series *timeseries.Series) *timeseries.Series {
	out := timeseries.NewSeries()
	var base float64
	first := true
	for date, value := range series.Ascending() {
		if first {
			base, first = value, false
			if base == 0 {
				return out
			}
		}
		out.Put(date, (value-base)/base*100)
	}
	return out
}
