package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/clients/alphavantage"
	"github.com/aristath/portfolio-analytics/internal/config"
	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/modules/portfolio"
	"github.com/aristath/portfolio-analytics/internal/modules/statistics"
	"github.com/aristath/portfolio-analytics/internal/modules/universe"
	"github.com/aristath/portfolio-analytics/internal/utils"
)

// InitializeServices creates the provider client and the services.
// provider overrides the Alpha Vantage client when not nil.
func InitializeServices(container *Container, cfg *config.Config, provider domain.MarketDataProvider, log zerolog.Logger) {
	if provider == nil {
		client := alphavantage.NewClient(cfg.AlphaVantageAPIKey, log)
		client.SetBaseURL(cfg.AlphaVantageBaseURL)
		client.SetDailyLimit(cfg.AlphaVantageDailyLimit)
		container.AlphaVantageClient = client
		provider = client

		if cfg.AlphaVantageAPIKey == "" {
			log.Warn().Msg("ALPHAVANTAGE_API_KEY is not set, stock creation and sync will fail")
		}
	}

	container.Clock = domain.NewSystemClock(cfg.Location)
	container.StockLocks = &utils.KeyedMutex{}
	container.Calculator = statistics.NewCalculator(cfg.WindowOrder, log)
	container.PriceValidator = universe.NewPriceValidator(log)

	container.SyncService = universe.NewHistoricalSyncService(
		provider,
		container.StockRepo,
		container.Calculator,
		container.PriceValidator,
		container.Clock,
		container.StockLocks,
		log,
	)
	container.StockService = universe.NewStockService(
		provider,
		container.StockRepo,
		container.SyncService,
		container.Calculator,
		container.PriceValidator,
		container.Clock,
		container.StockLocks,
		log,
	)
	container.PortfolioService = portfolio.NewPortfolioService(
		container.PortfolioRepo,
		container.StockRepo,
		container.Calculator,
		container.Clock,
		log,
	)
}
