package universe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
	"github.com/aristath/portfolio-analytics/internal/utils"
)

// QualifiedSymbol appends ".<exchange>" to symbol unless the exchange is NYSE or NASDAQ,
// no exchange is given, or the symbol already carries that suffix.
func QualifiedSymbol(symbol, exchange string) string {
	symbol = utils.NormalizeSymbol(symbol)
	exchange = utils.NormalizeSymbol(exchange)
	if exchange == "" || exchange == domain.ExchangeNYSE || exchange == domain.ExchangeNASDAQ {
		return symbol
	}
	if strings.HasSuffix(symbol, "."+exchange) {
		return symbol
	}
	return symbol + "." + exchange
}

// StockService creates and reads stocks
type StockService struct {
	provider   domain.MarketDataProvider
	stockRepo  StockRepositoryInterface
	syncer     *HistoricalSyncService
	calculator StatisticsCalculator
	validator  *PriceValidator
	clock      domain.Clock
	locks      *utils.KeyedMutex
	log        zerolog.Logger
}

// NewStockService creates a new stock service
func NewStockService(
	provider domain.MarketDataProvider,
	stockRepo StockRepositoryInterface,
	syncer *HistoricalSyncService,
	calculator StatisticsCalculator,
	validator *PriceValidator,
	clock domain.Clock,
	locks *utils.KeyedMutex,
	log zerolog.Logger,
) *StockService {
	return &StockService{
		provider:   provider,
		stockRepo:  stockRepo,
		syncer:     syncer,
		calculator: calculator,
		validator:  validator,
		clock:      clock,
		locks:      locks,
		log:        log.With().Str("service", "stock").Logger(),
	}
}

// Create fetches daily and monthly series plus the company overview for a new stock,
// computes its statistics and stores it. Nothing is stored if any fetch fails.
func (s *StockService) Create(ctx context.Context, symbol, exchange string) (*domain.Stock, error) {
	if utils.NormalizeSymbol(symbol) == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidArgument)
	}
	symbol = QualifiedSymbol(symbol, exchange)

	unlock := s.locks.Lock(symbol)
	defer unlock()

	exists, err := s.stockRepo.Exists(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("stock %s: %w", symbol, domain.ErrAlreadyExists)
	}

	daily, err := s.provider.DailySeries(ctx, symbol)
	if err != nil {
		return nil, domain.NewProviderError("daily", symbol, err)
	}
	if err := s.validator.Validate(symbol, timeseries.Daily, daily); err != nil {
		return nil, domain.NewProviderError("daily", symbol, err)
	}
	monthly, err := s.provider.MonthlySeries(ctx, symbol)
	if err != nil {
		return nil, domain.NewProviderError("monthly", symbol, err)
	}
	if err := s.validator.Validate(symbol, timeseries.Monthly, monthly); err != nil {
		return nil, domain.NewProviderError("monthly", symbol, err)
	}
	overview, err := s.provider.CompanyOverview(ctx, symbol)
	if err != nil {
		return nil, domain.NewProviderError("overview", symbol, err)
	}

	prices := &timeseries.HistoricalPriceSeries{Daily: daily, Monthly: monthly}
	stats, err := s.calculator.ForStock(prices)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics for %s: %w", symbol, err)
	}

	stock := &domain.Stock{
		Symbol:       symbol,
		Name:         overview.Name,
		Description:  overview.Description,
		Country:      overview.Country,
		Sector:       overview.Sector,
		Industry:     overview.Industry,
		Exchange:     overview.Exchange,
		LastSyncDate: s.clock.Today(),
		Statistics:   stats,
		Prices:       prices,
	}
	if price, ok := prices.CurrentPrice(); ok {
		stock.CurrentPrice = price
	}

	if err := s.stockRepo.Save(ctx, stock); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("symbol", symbol).
		Int("daily_points", daily.Len()).
		Int("monthly_points", monthly.Len()).
		Msg("Stock created")
	return stock, nil
}

// Get returns a stock with its prices after attempting an incremental sync.
// Provider failures are logged and the stored stock is returned as is.
func (s *StockService) Get(ctx context.Context, symbol string) (*domain.Stock, error) {
	stock, _, err := s.syncer.Sync(ctx, utils.NormalizeSymbol(symbol))
	if err == nil {
		return stock, nil
	}
	if stock != nil && domain.IsProviderError(err) {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Serving stored stock after failed sync")
		return stock, nil
	}
	return nil, err
}

// Sync runs an incremental sync and surfaces every failure.
func (s *StockService) Sync(ctx context.Context, symbol string) (*domain.Stock, domain.SyncOutcome, error) {
	stock, outcome, err := s.syncer.Sync(ctx, utils.NormalizeSymbol(symbol))
	if err != nil {
		return nil, "", err
	}
	return stock, outcome, nil
}

// List returns every stored stock without price series.
func (s *StockService) List(ctx context.Context) ([]*domain.Stock, error) {
	symbols, err := s.stockRepo.ListSymbols(ctx)
	if err != nil {
		return nil, err
	}
	stocks := make([]*domain.Stock, 0, len(symbols))
	for _, symbol := range symbols {
		stock, err := s.stockRepo.GetBySymbol(ctx, symbol)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, stock)
	}
	return stocks, nil
}

// Prices returns the requested series of a stock without syncing.
func (s *StockService) Prices(ctx context.Context, symbol string, period timeseries.PeriodType) (*timeseries.Series, error) {
	stock, err := s.stockRepo.GetWithPrices(ctx, utils.NormalizeSymbol(symbol))
	if err != nil {
		return nil, err
	}
	return stock.Prices.Select(period), nil
}

// EnsureExists creates each missing symbol, logging and skipping failures.
// Returns the number of stocks created.
func (s *StockService) EnsureExists(ctx context.Context, symbols []string) int {
	created := 0
	for _, symbol := range symbols {
		_, err := s.Create(ctx, symbol, "")
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrAlreadyExists):
		default:
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to seed watchlist stock")
			if errors.Is(err, domain.ErrRateLimitExceeded) || ctx.Err() != nil {
				return created
			}
		}
	}
	return created
}
