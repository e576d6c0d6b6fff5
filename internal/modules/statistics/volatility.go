package statistics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aristath/portfolio-analytics/internal/timeseries"
	"github.com/aristath/portfolio-analytics/pkg/formulas"
)

// Periods per year used to annualize volatility.
const (
	TradingDaysPerYear = 252
	MonthsPerYear      = 12
)

// Window is a labelled look-back of log returns.
type Window struct {
	Label string
	Size  int
}

// DailyWindows are evaluated against the daily series.
var DailyWindows = []Window{
	{"1 week", 5},
	{"2 weeks", 10},
	{"1 month", 21},
	{"2 months", 42},
	{"3 months", 63},
	{"6 months", 126},
}

// MonthlyWindows are evaluated against the monthly series.
var MonthlyWindows = []Window{
	{"1 year", 12},
	{"2 years", 24},
	{"3 years", 36},
	{"5 years", 60},
	{"10 years", 120},
}

// WindowOrder controls the order in which volatility windows are visited.
// Evaluation stops at the first window larger than the available history,
// so the order decides which windows are reported for short series.
type WindowOrder int

const (
	// Lexicographic visits windows sorted by label ("1 month" before "1 week").
	Lexicographic WindowOrder = iota
	// BySize visits windows from smallest to largest.
	BySize
)

// ParseWindowOrder accepts "lexicographic" (or empty) and "size".
func ParseWindowOrder(s string) (WindowOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lexicographic", "label":
		return Lexicographic, nil
	case "size", "by_size":
		return BySize, nil
	}
	return Lexicographic, fmt.Errorf("unknown volatility window order %q", s)
}

func (o WindowOrder) String() string {
	if o == BySize {
		return "size"
	}
	return "lexicographic"
}

// Ordered returns a copy of windows in visiting order.
func (o WindowOrder) Ordered(windows []Window) []Window {
	out := slices.Clone(windows)
	if o == BySize {
		slices.SortStableFunc(out, func(a, b Window) int { return a.Size - b.Size })
	} else {
		slices.SortFunc(out, func(a, b Window) int { return strings.Compare(a.Label, b.Label) })
	}
	return out
}

// AnnualizedVolatility computes annualized volatility in percent for each window
// that fits the available log returns, keyed by window label. Windows containing
// a non-finite log return are omitted.
func AnnualizedVolatility(prices *timeseries.HistoricalPriceSeries, period timeseries.PeriodType, order WindowOrder) map[string]float64 {
	windows, periodsPerYear := MonthlyWindows, MonthsPerYear
	if period == timeseries.Daily {
		windows, periodsPerYear = DailyWindows, TradingDaysPerYear
	}

	series := prices.Select(period)
	values := make([]float64, 0, series.Len())
	for _, v := range series.Descending() {
		values = append(values, v)
	}
	returns := formulas.LogReturns(values)

	result := make(map[string]float64)
	for _, w := range order.Ordered(windows) {
		if w.Size > len(returns) {
			break
		}
		window := returns[:w.Size]
		// A zero price makes a log return infinite; such windows have no volatility.
		if !formulas.AllFinite(window) {
			continue
		}
		result[w.Label] = formulas.Annualize(formulas.SampleStdDev(window), periodsPerYear)
	}
	return result
}
