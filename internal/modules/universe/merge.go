package universe

import "github.com/aristath/portfolio-analytics/internal/timeseries"

// MergeNewer walks fetched newest first and copies each observation into stored until
// it reaches the first date stored already holds. Values for known dates are never
// overwritten. Returns the number of observations added.
func MergeNewer(stored, fetched *timeseries.Series) int {
	added := 0
	for date, price := range fetched.Descending() {
		if stored.Has(date) {
			break
		}
		stored.Put(date, price)
		added++
	}
	return added
}
