package timeseries

import (
	"errors"
	"fmt"
	"strings"
)

// PeriodType selects which series of a HistoricalPriceSeries a computation reads.
type PeriodType int

const (
	// Monthly selects the month-end adjusted close series.
	Monthly PeriodType = iota
	// Daily selects the daily close series.
	Daily
)

// ErrUnsupportedPeriod is returned by ParsePeriodType for unknown period strings.
var ErrUnsupportedPeriod = errors.New("unsupported period type")

// ParsePeriodType accepts "daily"/"days" and "monthly"/"months".
func ParsePeriodType(s string) (PeriodType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "days":
		return Daily, nil
	case "monthly", "months":
		return Monthly, nil
	}
	return Monthly, fmt.Errorf("%w: %q (expected daily or monthly)", ErrUnsupportedPeriod, s)
}

func (p PeriodType) String() string {
	if p == Daily {
		return "daily"
	}
	return "monthly"
}

// HistoricalPriceSeries is the pair of series owned by a Stock or a Portfolio.
type HistoricalPriceSeries struct {
	Daily   *Series
	Monthly *Series
}

// NewHistoricalPriceSeries returns a pair of empty series.
func NewHistoricalPriceSeries() *HistoricalPriceSeries {
	return &HistoricalPriceSeries{Daily: NewSeries(), Monthly: NewSeries()}
}

// Select returns the series for the given period type.
func (h *HistoricalPriceSeries) Select(p PeriodType) *Series {
	if p == Daily {
		return h.Daily
	}
	return h.Monthly
}

// LatestTradingDay is the maximum date of the daily series.
func (h *HistoricalPriceSeries) LatestTradingDay() (Date, bool) {
	p, ok := h.Daily.Latest()
	return p.Date, ok
}

// CurrentPrice is the daily price on the latest trading day.
func (h *HistoricalPriceSeries) CurrentPrice() (float64, bool) {
	p, ok := h.Daily.Latest()
	return p.Price, ok
}

// Clone returns a deep copy.
func (h *HistoricalPriceSeries) Clone() *HistoricalPriceSeries {
	return &HistoricalPriceSeries{Daily: h.Daily.Clone(), Monthly: h.Monthly.Clone()}
}

// Equal reports whether both pairs hold identical observations.
func (h *HistoricalPriceSeries) Equal(o *HistoricalPriceSeries) bool {
	return h.Daily.Equal(o.Daily) && h.Monthly.Equal(o.Monthly)
}
