package universe

import (
	"context"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// StockRepositoryInterface defines the stock persistence used by the services
type StockRepositoryInterface interface {
	GetBySymbol(ctx context.Context, symbol string) (*domain.Stock, error)
	GetWithPrices(ctx context.Context, symbol string) (*domain.Stock, error)
	Exists(ctx context.Context, symbol string) (bool, error)
	ListSymbols(ctx context.Context) ([]string, error)
	Save(ctx context.Context, stock *domain.Stock) error
}

// StatisticsCalculator derives a stock's cached statistics from its series
type StatisticsCalculator interface {
	ForStock(prices *timeseries.HistoricalPriceSeries) (domain.Statistics, error)
}

var _ StockRepositoryInterface = (*StockRepository)(nil)
