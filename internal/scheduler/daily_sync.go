package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/utils"
)

// StockSyncer is the part of the stock service the sync job drives
type StockSyncer interface {
	List(ctx context.Context) ([]*domain.Stock, error)
	Sync(ctx context.Context, symbol string) (*domain.Stock, domain.SyncOutcome, error)
}

// PortfolioRefresher re-runs the portfolio pipeline for every portfolio
type PortfolioRefresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// DailySyncJob incrementally syncs every stored stock, then refreshes portfolios
// so their blended series pick up the new prices.
type DailySyncJob struct {
	stocks     StockSyncer
	portfolios PortfolioRefresher
	timeout    time.Duration
	log        zerolog.Logger
}

// NewDailySyncJob creates a new DailySyncJob
func NewDailySyncJob(stocks StockSyncer, portfolios PortfolioRefresher, timeout time.Duration, log zerolog.Logger) *DailySyncJob {
	return &DailySyncJob{
		stocks:     stocks,
		portfolios: portfolios,
		timeout:    timeout,
		log:        log.With().Str("job", "daily_sync").Logger(),
	}
}

// Name returns the job name
func (j *DailySyncJob) Name() string {
	return "daily_sync"
}

// Run executes the daily sync job.
//
// A failing stock is logged and skipped. A rate-limit failure ends the stock pass
// since every following request would fail too; portfolios are still refreshed with
// whatever was synced.
func (j *DailySyncJob) Run() error {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	timer := utils.NewTimer("daily_sync", j.log)
	counters := map[string]int{}
	defer func() { timer.Stop(counters) }()

	stocks, err := j.stocks.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stocks: %w", err)
	}
	counters["stocks"] = len(stocks)

	var rateLimited error
	for _, stock := range stocks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("daily sync interrupted: %w", err)
		}

		_, outcome, err := j.stocks.Sync(ctx, stock.Symbol)
		if err != nil {
			counters["failed"]++
			if errors.Is(err, domain.ErrRateLimitExceeded) {
				j.log.Warn().Err(err).Str("symbol", stock.Symbol).Msg("Rate limit reached, stopping stock sync")
				rateLimited = err
				break
			}
			j.log.Error().Err(err).Str("symbol", stock.Symbol).Msg("Failed to sync stock")
			continue
		}
		counters[string(outcome)]++
	}

	refreshed, err := j.portfolios.RefreshAll(ctx)
	counters["portfolios"] = refreshed
	if err != nil {
		return fmt.Errorf("failed to refresh portfolios: %w", err)
	}

	j.log.Info().
		Int("stocks", len(stocks)).
		Int("updated", counters[string(domain.SyncUpdated)]).
		Int("failed", counters["failed"]).
		Int("portfolios", refreshed).
		Msg("Daily sync completed")

	if rateLimited != nil {
		return fmt.Errorf("daily sync stopped early: %w", rateLimited)
	}
	return nil
}
