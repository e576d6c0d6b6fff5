package universe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
	"github.com/aristath/portfolio-analytics/internal/utils"
)

// HistoricalSyncService keeps stored price series current against the provider.
// Syncs of the same symbol are serialized; different symbols may sync concurrently.
type HistoricalSyncService struct {
	provider   domain.MarketDataProvider
	stockRepo  StockRepositoryInterface
	calculator StatisticsCalculator
	validator  *PriceValidator
	clock      domain.Clock
	locks      *utils.KeyedMutex
	log        zerolog.Logger
}

// NewHistoricalSyncService creates a new historical sync service
func NewHistoricalSyncService(
	provider domain.MarketDataProvider,
	stockRepo StockRepositoryInterface,
	calculator StatisticsCalculator,
	validator *PriceValidator,
	clock domain.Clock,
	locks *utils.KeyedMutex,
	log zerolog.Logger,
) *HistoricalSyncService {
	return &HistoricalSyncService{
		provider:   provider,
		stockRepo:  stockRepo,
		calculator: calculator,
		validator:  validator,
		clock:      clock,
		locks:      locks,
		log:        log.With().Str("service", "historical_sync").Logger(),
	}
}

// Sync brings the stored series of symbol up to date and returns the stock as stored
// afterwards. On a provider failure the stored stock is returned unchanged together
// with the error, so callers may still serve it. Failures are left to the caller to log.
func (s *HistoricalSyncService) Sync(ctx context.Context, symbol string) (*domain.Stock, domain.SyncOutcome, error) {
	unlock := s.locks.Lock(symbol)
	defer unlock()

	stock, err := s.stockRepo.GetWithPrices(ctx, symbol)
	if err != nil {
		return nil, "", err
	}

	updated, outcome, err := s.syncStock(ctx, stock)
	if err != nil {
		return stock, "", err
	}
	return updated, outcome, nil
}

// syncStock never mutates stock; the returned value is a modified copy.
//
// Workflow:
//  1. Nothing to do when already stamped today
//  2. Fetch daily; if its latest date matches the stored one, only stamp today
//  3. Merge newer daily observations
//  4. When the stored monthly series ends in an earlier month, drop its latest
//     (provisional) entry and merge newer monthly observations
//  5. Recompute statistics, stamp today and save series and stock together
func (s *HistoricalSyncService) syncStock(ctx context.Context, stock *domain.Stock) (*domain.Stock, domain.SyncOutcome, error) {
	today := s.clock.Today()
	log := s.log.With().Str("symbol", stock.Symbol).Logger()

	if stock.LastSyncDate == today {
		log.Debug().Msg("Already synced today")
		return stock, domain.SyncAlreadySynced, nil
	}

	fetchedDaily, err := s.provider.DailySeries(ctx, stock.Symbol)
	if err != nil {
		return nil, "", domain.NewProviderError("daily", stock.Symbol, err)
	}
	if err := s.validator.Validate(stock.Symbol, timeseries.Daily, fetchedDaily); err != nil {
		return nil, "", domain.NewProviderError("daily", stock.Symbol, err)
	}

	prices := stock.Prices
	if prices == nil {
		prices = timeseries.NewHistoricalPriceSeries()
	}

	storedLatest, hasStored := prices.Daily.Latest()
	fetchedLatest, _ := fetchedDaily.Latest()
	if hasStored && storedLatest.Date == fetchedLatest.Date {
		stamped := *stock
		stamped.LastSyncDate = today
		stamped.Prices = nil
		if err := s.stockRepo.Save(ctx, &stamped); err != nil {
			return nil, "", err
		}
		stamped.Prices = stock.Prices
		log.Info().Str("latest", storedLatest.Date.String()).Msg("Daily prices already current")
		return &stamped, domain.SyncDailyCurrent, nil
	}

	work := prices.Clone()
	addedDaily := MergeNewer(work.Daily, fetchedDaily)

	addedMonthly := 0
	monthlyLatest, hasMonthly := work.Monthly.Latest()
	if !hasMonthly || monthlyLatest.Date.YearMonth() != today.YearMonth() {
		fetchedMonthly, err := s.provider.MonthlySeries(ctx, stock.Symbol)
		if err != nil {
			return nil, "", domain.NewProviderError("monthly", stock.Symbol, err)
		}
		if err := s.validator.Validate(stock.Symbol, timeseries.Monthly, fetchedMonthly); err != nil {
			return nil, "", domain.NewProviderError("monthly", stock.Symbol, err)
		}
		if hasMonthly {
			work.Monthly.Delete(monthlyLatest.Date)
		}
		addedMonthly = MergeNewer(work.Monthly, fetchedMonthly)
	}

	stats, err := s.calculator.ForStock(work)
	if err != nil {
		return nil, "", fmt.Errorf("failed to compute statistics for %s: %w", stock.Symbol, err)
	}

	updated := *stock
	updated.Prices = work
	updated.Statistics = stats
	updated.LastSyncDate = today
	if price, ok := work.CurrentPrice(); ok {
		updated.CurrentPrice = price
	}

	if err := s.stockRepo.Save(ctx, &updated); err != nil {
		return nil, "", err
	}

	log.Info().
		Int("daily_added", addedDaily).
		Int("monthly_added", addedMonthly).
		Float64("current_price", updated.CurrentPrice).
		Msg("Historical prices synced")

	return &updated, domain.SyncUpdated, nil
}
