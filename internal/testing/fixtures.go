package testing

import (
	"time"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// SeriesFrom builds a series from "YYYY-MM-DD" -> price pairs.
func SeriesFrom(prices map[string]float64) *timeseries.Series {
	s := timeseries.NewSeries()
	for date, price := range prices {
		s.Put(timeseries.MustParseDate(date), price)
	}
	return s
}

// BusinessDays returns n weekday observations ending on (and including, if a weekday) end.
// Prices start at start and grow by step per day, oldest first.
func BusinessDays(end string, n int, start, step float64) *timeseries.Series {
	d := timeseries.MustParseDate(end)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 0, n)
	for len(dates) < n {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates = append(dates, day)
		}
		day = day.AddDate(0, 0, -1)
	}

	s := timeseries.NewSeries()
	for i := len(dates) - 1; i >= 0; i-- {
		s.Put(timeseries.DateOf(dates[i]), start+step*float64(len(dates)-1-i))
	}
	return s
}

// MonthEnds returns n month-end observations ending with the month of end, oldest first.
func MonthEnds(end string, n int, start, step float64) *timeseries.Series {
	d := timeseries.MustParseDate(end)
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)

	s := timeseries.NewSeries()
	for i := 0; i < n; i++ {
		monthStart := first.AddDate(0, -(n - 1 - i), 0)
		s.Put(timeseries.DateOf(monthStart.AddDate(0, 1, -1)), start+step*float64(i))
	}
	return s
}

// NewHistoricalSeries pairs a daily and a monthly series.
func NewHistoricalSeries(daily, monthly *timeseries.Series) *timeseries.HistoricalPriceSeries {
	return &timeseries.HistoricalPriceSeries{Daily: daily, Monthly: monthly}
}

// NewStockFixtures returns classified stocks without price data.
func NewStockFixtures() []*domain.Stock {
	return []*domain.Stock{
		{Symbol: "IBM", Name: "International Business Machines", Exchange: "NYSE", Country: "USA", Sector: "Technology", Industry: "Information Technology Services"},
		{Symbol: "AAPL", Name: "Apple Inc", Exchange: "NASDAQ", Country: "USA", Sector: "Technology", Industry: "Consumer Electronics"},
		{Symbol: "SHEL.LON", Name: "Shell PLC", Exchange: "LON", Country: "United Kingdom", Sector: "Energy", Industry: "Oil & Gas Integrated"},
	}
}

// OverviewFor converts a stock fixture into the overview a provider would return.
func OverviewFor(s *domain.Stock) *domain.CompanyOverview {
	return &domain.CompanyOverview{
		Symbol:      s.Symbol,
		Name:        s.Name,
		Description: s.Name + " description",
		Country:     s.Country,
		Sector:      s.Sector,
		Industry:    s.Industry,
		Exchange:    s.Exchange,
	}
}
