package statistics

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// Calculator bundles the return and volatility computations into a Statistics value.
type Calculator struct {
	order WindowOrder
	log   zerolog.Logger
}

// NewCalculator creates a calculator visiting volatility windows in the given order.
func NewCalculator(order WindowOrder, log zerolog.Logger) *Calculator {
	return &Calculator{
		order: order,
		log:   log.With().Str("component", "statistics").Logger(),
	}
}

// ForStock computes statistics for a stock's own series.
// Both the daily and the monthly series must hold at least one observation.
func (c *Calculator) ForStock(prices *timeseries.HistoricalPriceSeries) (domain.Statistics, error) {
	if prices == nil || prices.Daily.Len() == 0 || prices.Monthly.Len() == 0 {
		return domain.Statistics{}, fmt.Errorf("%w: statistics need at least one daily and one monthly observation", domain.ErrInvalidArgument)
	}
	return c.compute(prices), nil
}

// ForPortfolio computes statistics for a blended series. An empty series yields empty maps.
func (c *Calculator) ForPortfolio(prices *timeseries.HistoricalPriceSeries) domain.Statistics {
	if prices == nil {
		return domain.EmptyStatistics()
	}
	return c.compute(prices)
}

func (c *Calculator) compute(prices *timeseries.HistoricalPriceSeries) domain.Statistics {
	stats := domain.Statistics{
		AnnualReturn:               AnnualReturn(prices.Monthly),
		AnnualizedReturn:           AnnualizedReturns(prices.Monthly),
		AnnualizedVolatilityMonths: AnnualizedVolatility(prices, timeseries.Monthly, c.order),
		AnnualizedVolatilityDays:   AnnualizedVolatility(prices, timeseries.Daily, c.order),
	}
	if day, ok := prices.LatestTradingDay(); ok {
		stats.LatestTradingDay = day
	}

	c.log.Debug().
		Int("daily_points", prices.Daily.Len()).
		Int("monthly_points", prices.Monthly.Len()).
		Int("annual_years", len(stats.AnnualReturn)).
		Int("vol_day_windows", len(stats.AnnualizedVolatilityDays)).
		Msg("Computed statistics")

	return stats
}
