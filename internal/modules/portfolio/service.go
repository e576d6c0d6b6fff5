// Package portfolio manages portfolios and keeps their derived allocation,
// blended price series and statistics in step with their holdings.
package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/modules/aggregation"
	"github.com/aristath/portfolio-analytics/internal/modules/allocation"
	"github.com/aristath/portfolio-analytics/internal/modules/statistics"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
	"github.com/aristath/portfolio-analytics/internal/utils"
)

// StockLookup resolves holding symbols to stored stocks
type StockLookup interface {
	GetBySymbol(ctx context.Context, symbol string) (*domain.Stock, error)
	GetBySymbols(ctx context.Context, symbols []string) (map[string]*domain.Stock, error)
}

// StatisticsCalculator derives statistics from a blended series
type StatisticsCalculator interface {
	ForPortfolio(prices *timeseries.HistoricalPriceSeries) domain.Statistics
}

// RepositoryInterface defines the portfolio persistence used by the service
type RepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*domain.Portfolio, error)
	ListIDs(ctx context.Context) ([]string, error)
	Save(ctx context.Context, p *domain.Portfolio, activity ...domain.ActivityEntry) error
	Delete(ctx context.Context, id string, activity ...domain.ActivityEntry) error
	Activity(ctx context.Context, id string) ([]domain.ActivityEntry, error)
	AllActivity(ctx context.Context) ([]domain.ActivityEntry, error)
}

// CreateRequest holds the attributes of a new portfolio
type CreateRequest struct {
	Name     string  `json:"name"`
	Strategy string  `json:"strategy"`
	Owner    string  `json:"owner"`
	Capital  float64 `json:"capital"`
}

// PortfolioService orchestrates portfolio mutations.
//
// Every holding mutation runs allocation, then aggregation of the constituents'
// series, then statistics, and saves the result as one unit together with an
// activity entry. Mutations of the same portfolio are serialized.
type PortfolioService struct {
	repo       RepositoryInterface
	stocks     StockLookup
	calculator StatisticsCalculator
	clock      domain.Clock
	locks      utils.KeyedMutex
	log        zerolog.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(
	repo RepositoryInterface,
	stocks StockLookup,
	calculator StatisticsCalculator,
	clock domain.Clock,
	log zerolog.Logger,
) *PortfolioService {
	return &PortfolioService{
		repo:       repo,
		stocks:     stocks,
		calculator: calculator,
		clock:      clock,
		log:        log.With().Str("service", "portfolio").Logger(),
	}
}

// Create stores a new empty portfolio.
func (s *PortfolioService) Create(ctx context.Context, req CreateRequest) (*domain.Portfolio, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	}
	if req.Capital < 0 {
		return nil, fmt.Errorf("%w: capital must not be negative", domain.ErrInvalidArgument)
	}

	p := &domain.Portfolio{
		ID:        uuid.NewString(),
		Name:      name,
		Strategy:  req.Strategy,
		Owner:     req.Owner,
		Capital:   req.Capital,
		CreatedAt: s.clock.Now(),
		Holdings:  []domain.Holding{},
	}
	if err := s.recompute(ctx, p); err != nil {
		return nil, err
	}
	entry := s.activity(p, domain.ActivityCreated, nil, nil)
	if err := s.repo.Save(ctx, p, entry); err != nil {
		return nil, err
	}

	s.log.Info().Str("portfolio_id", p.ID).Str("name", p.Name).Msg("Portfolio created")
	return p, nil
}

// Get loads a portfolio with its blended series.
func (s *PortfolioService) Get(ctx context.Context, id string) (*domain.Portfolio, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every portfolio, or only those of owner when owner is not empty.
func (s *PortfolioService) List(ctx context.Context, owner string) ([]*domain.Portfolio, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Portfolio, 0, len(ids))
	for _, id := range ids {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if owner != "" && p.Owner != owner {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// Delete removes a portfolio and its series.
func (s *PortfolioService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	entry := s.activity(p, domain.ActivityDeleted, nil, p.Holdings)
	if err := s.repo.Delete(ctx, id, entry); err != nil {
		return err
	}
	s.log.Info().Str("portfolio_id", id).Msg("Portfolio deleted")
	return nil
}

// AddHolding buys quantity shares of symbol at the stock's current price.
func (s *PortfolioService) AddHolding(ctx context.Context, id, symbol string, quantity int) (*domain.Portfolio, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidArgument)
	}
	symbol = utils.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", domain.ErrInvalidArgument)
	}

	stock, err := s.stocks.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(p *domain.Portfolio) (*domain.ActivityEntry, error) {
		holding := domain.Holding{
			ID:              uuid.NewString(),
			Symbol:          stock.Symbol,
			Quantity:        quantity,
			PriceAtPurchase: stock.CurrentPrice,
			PurchasedAt:     s.clock.Now(),
		}
		p.Holdings = append(p.Holdings, holding)
		entry := s.activity(p, domain.ActivityHoldingAdded, []domain.Holding{holding}, nil)
		return &entry, nil
	})
}

// RemoveHolding deletes a holding by id.
func (s *PortfolioService) RemoveHolding(ctx context.Context, id, holdingID string) (*domain.Portfolio, error) {
	return s.mutate(ctx, id, func(p *domain.Portfolio) (*domain.ActivityEntry, error) {
		i := p.HoldingIndex(holdingID)
		if i < 0 {
			return nil, fmt.Errorf("holding %s: %w", holdingID, domain.ErrNotFound)
		}
		removed := p.Holdings[i]
		p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
		entry := s.activity(p, domain.ActivityHoldingRemoved, nil, []domain.Holding{removed})
		return &entry, nil
	})
}

// Refresh re-runs the pipeline against the stocks' latest prices.
func (s *PortfolioService) Refresh(ctx context.Context, id string) (*domain.Portfolio, error) {
	return s.mutate(ctx, id, func(*domain.Portfolio) (*domain.ActivityEntry, error) { return nil, nil })
}

// RefreshAll refreshes every portfolio, logging failures and continuing.
// Returns the number of portfolios refreshed.
func (s *PortfolioService) RefreshAll(ctx context.Context) (int, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if _, err := s.Refresh(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("portfolio_id", id).Msg("Failed to refresh portfolio")
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// Rebalance suggests target quantities that match the current value allocation.
func (s *PortfolioService) Rebalance(ctx context.Context, id string) (map[string]int, error) {
	p, stocks, err := s.loadWithStocks(ctx, id)
	if err != nil {
		return nil, err
	}
	return allocation.Rebalance(p.Holdings, stocks, p.PercentAllocated), nil
}

// CombinedHoldings groups the holdings of a portfolio by symbol.
func (s *PortfolioService) CombinedHoldings(ctx context.Context, id string) ([]allocation.CombinedHolding, error) {
	p, stocks, err := s.loadWithStocks(ctx, id)
	if err != nil {
		return nil, err
	}
	return allocation.CombineHoldings(p.Holdings, stocks), nil
}

// CapitalUsage reports used and remaining capital.
func (s *PortfolioService) CapitalUsage(ctx context.Context, id string) (allocation.CapitalUsage, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return allocation.CapitalUsage{}, err
	}
	return allocation.UsedCapital(p), nil
}

// Prices returns the blended series of the given period.
func (s *PortfolioService) Prices(ctx context.Context, id string, period timeseries.PeriodType) (*timeseries.Series, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Prices.Select(period), nil
}

// PriceChange returns the blended series as percentage change from its first observation.
func (s *PortfolioService) PriceChange(ctx context.Context, id string, period timeseries.PeriodType) (*timeseries.Series, error) {
	series, err := s.Prices(ctx, id, period)
	if err != nil {
		return nil, err
	}
	return statistics.PercentageChange(series), nil
}

// Activity returns the recorded changes of a portfolio, oldest first.
func (s *PortfolioService) Activity(ctx context.Context, id string) ([]domain.ActivityEntry, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Activity(ctx, id)
}

// AllActivity returns the recorded changes of every portfolio, deleted ones included,
// optionally only those of owner.
func (s *PortfolioService) AllActivity(ctx context.Context, owner string) ([]domain.ActivityEntry, error) {
	entries, err := s.repo.AllActivity(ctx)
	if err != nil {
		return nil, err
	}
	if owner == "" {
		return entries, nil
	}

	filtered := make([]domain.ActivityEntry, 0, len(entries))
	for _, e := range entries {
		if e.Owner == owner {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// mutate applies fn to the stored portfolio, recomputes derived data and saves it
// together with the activity entry fn returns, if any.
// Nothing is saved when fn or the pipeline fails.
func (s *PortfolioService) mutate(ctx context.Context, id string, fn func(*domain.Portfolio) (*domain.ActivityEntry, error)) (*domain.Portfolio, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entry, err := fn(p)
	if err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, p); err != nil {
		return nil, err
	}

	var activity []domain.ActivityEntry
	if entry != nil {
		activity = append(activity, *entry)
	}
	if err := s.repo.Save(ctx, p, activity...); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PortfolioService) activity(p *domain.Portfolio, action domain.ActivityAction, added, removed []domain.Holding) domain.ActivityEntry {
	if added == nil {
		added = []domain.Holding{}
	}
	if removed == nil {
		removed = []domain.Holding{}
	}
	return domain.ActivityEntry{
		ID:          uuid.NewString(),
		Timestamp:   s.clock.Now(),
		PortfolioID: p.ID,
		Owner:       p.Owner,
		Action:      action,
		Added:       added,
		Removed:     removed,
		Capital:     p.Capital,
	}
}

// recompute runs allocation, aggregation and statistics in that order.
func (s *PortfolioService) recompute(ctx context.Context, p *domain.Portfolio) error {
	timer := utils.NewTimer("portfolio_recompute", s.log)

	stocks, err := s.stocks.GetBySymbols(ctx, p.Symbols())
	if err != nil {
		return fmt.Errorf("failed to load stocks of portfolio %s: %w", p.ID, err)
	}

	allocation.Apply(p, stocks)

	series := make(map[string]*timeseries.HistoricalPriceSeries, len(stocks))
	for symbol, stock := range stocks {
		series[symbol] = stock.Prices
	}
	p.Prices = aggregation.Aggregate(p.PercentAllocated, series)

	p.Statistics = s.calculator.ForPortfolio(p.Prices)

	timer.Stop(map[string]int{
		"holdings":       len(p.Holdings),
		"daily_points":   p.Prices.Daily.Len(),
		"monthly_points": p.Prices.Monthly.Len(),
	})
	return nil
}

func (s *PortfolioService) loadWithStocks(ctx context.Context, id string) (*domain.Portfolio, allocation.Stocks, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	stocks, err := s.stocks.GetBySymbols(ctx, p.Symbols())
	if err != nil {
		return nil, nil, err
	}
	return p, stocks, nil
}
