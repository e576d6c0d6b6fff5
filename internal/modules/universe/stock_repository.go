package universe

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/database"
	"github.com/aristath/portfolio-analytics/internal/domain"
)

// StockRepository stores stocks and, through HistoryDB, their price series
type StockRepository struct {
	store     database.DocumentStore
	historyDB *HistoryDB
	log       zerolog.Logger
}

// NewStockRepository creates a new stock repository
func NewStockRepository(store database.DocumentStore, historyDB *HistoryDB, log zerolog.Logger) *StockRepository {
	return &StockRepository{
		store:     store,
		historyDB: historyDB,
		log:       log.With().Str("repo", "stock").Logger(),
	}
}

// GetBySymbol loads a stock without its price series.
func (r *StockRepository) GetBySymbol(ctx context.Context, symbol string) (*domain.Stock, error) {
	var stock domain.Stock
	if err := r.store.Get(ctx, database.CollectionStocks, symbol, &stock); err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			return nil, fmt.Errorf("stock %s: %w", symbol, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load stock %s: %w", symbol, err)
	}
	return &stock, nil
}

// GetWithPrices loads a stock and attaches its price series.
func (r *StockRepository) GetWithPrices(ctx context.Context, symbol string) (*domain.Stock, error) {
	stock, err := r.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	prices, err := r.historyDB.LoadOrEmpty(ctx, StockSeriesKey(symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for %s: %w", symbol, err)
	}
	stock.Prices = prices
	return stock, nil
}

// GetBySymbols loads several stocks with their price series, keyed by symbol.
func (r *StockRepository) GetBySymbols(ctx context.Context, symbols []string) (map[string]*domain.Stock, error) {
	result := make(map[string]*domain.Stock, len(symbols))
	for _, symbol := range symbols {
		if _, ok := result[symbol]; ok {
			continue
		}
		stock, err := r.GetWithPrices(ctx, symbol)
		if err != nil {
			return nil, err
		}
		result[symbol] = stock
	}
	return result, nil
}

// Exists reports whether a stock is stored under symbol.
func (r *StockRepository) Exists(ctx context.Context, symbol string) (bool, error) {
	_, err := r.GetBySymbol(ctx, symbol)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ListSymbols returns every stored symbol in ascending order.
func (r *StockRepository) ListSymbols(ctx context.Context) ([]string, error) {
	return r.store.Keys(ctx, database.CollectionStocks)
}

// GetAll loads every stock without price series.
func (r *StockRepository) GetAll(ctx context.Context) ([]*domain.Stock, error) {
	symbols, err := r.ListSymbols(ctx)
	if err != nil {
		return nil, err
	}
	stocks := make([]*domain.Stock, 0, len(symbols))
	for _, symbol := range symbols {
		stock, err := r.GetBySymbol(ctx, symbol)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, stock)
	}
	return stocks, nil
}

// Save writes the stock and, when attached, its price series in one batch.
func (r *StockRepository) Save(ctx context.Context, stock *domain.Stock) error {
	docs := []database.Document{{
		Collection: database.CollectionStocks,
		Key:        stock.Symbol,
		Value:      stock,
	}}
	if stock.Prices != nil {
		docs = append(docs, r.historyDB.Document(StockSeriesKey(stock.Symbol), stock.Prices))
	}

	if err := r.store.PutMany(ctx, docs...); err != nil {
		return fmt.Errorf("failed to save stock %s: %w", stock.Symbol, err)
	}
	r.log.Debug().Str("symbol", stock.Symbol).Int("documents", len(docs)).Msg("Saved stock")
	return nil
}
