package universe

import (
	"fmt"

	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// SeriesDocument is the stored shape of a HistoricalPriceSeries.
type SeriesDocument struct {
	Daily   map[string]float64 `json:"daily" msgpack:"daily"`
	Monthly map[string]float64 `json:"monthly" msgpack:"monthly"`
}

// NewSeriesDocument converts a series pair into its stored shape.
func NewSeriesDocument(h *timeseries.HistoricalPriceSeries) SeriesDocument {
	return SeriesDocument{
		Daily:   h.Daily.ToMap(),
		Monthly: h.Monthly.ToMap(),
	}
}

// Series converts the stored shape back into a series pair.
func (d SeriesDocument) Series() (*timeseries.HistoricalPriceSeries, error) {
	daily, err := timeseries.FromMap(d.Daily)
	if err != nil {
		return nil, fmt.Errorf("daily series: %w", err)
	}
	monthly, err := timeseries.FromMap(d.Monthly)
	if err != nil {
		return nil, fmt.Errorf("monthly series: %w", err)
	}
	return &timeseries.HistoricalPriceSeries{Daily: daily, Monthly: monthly}, nil
}

// StockSeriesKey is the series document key of a stock.
func StockSeriesKey(symbol string) string { return "stock:" + symbol }

// PortfolioSeriesKey is the series document key of a portfolio.
func PortfolioSeriesKey(id string) string { return "portfolio:" + id }
