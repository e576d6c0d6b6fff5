package universe

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/database"
	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/timeseries"
)

// HistoryDB reads and writes price series documents
type HistoryDB struct {
	store database.DocumentStore
	log   zerolog.Logger
}

// NewHistoryDB creates a new history accessor
func NewHistoryDB(store database.DocumentStore, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		store: store,
		log:   log.With().Str("component", "history_db").Logger(),
	}
}

// Load returns the series stored under key. A missing document yields ErrNotFound.
func (h *HistoryDB) Load(ctx context.Context, key string) (*timeseries.HistoricalPriceSeries, error) {
	var doc SeriesDocument
	if err := h.store.Get(ctx, database.CollectionSeries, key, &doc); err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			return nil, fmt.Errorf("series %s: %w", key, domain.ErrNotFound)
		}
		return nil, err
	}

	series, err := doc.Series()
	if err != nil {
		return nil, fmt.Errorf("corrupt series document %s: %w", key, err)
	}
	return series, nil
}

// LoadOrEmpty is Load with an empty series pair for missing documents.
func (h *HistoryDB) LoadOrEmpty(ctx context.Context, key string) (*timeseries.HistoricalPriceSeries, error) {
	series, err := h.Load(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return timeseries.NewHistoricalPriceSeries(), nil
	}
	return series, err
}

// Document builds the write for a series so it can be stored together with its owner.
func (h *HistoryDB) Document(key string, series *timeseries.HistoricalPriceSeries) database.Document {
	return database.Document{
		Collection: database.CollectionSeries,
		Key:        key,
		Value:      NewSeriesDocument(series),
	}
}

// Delete removes the series stored under key.
func (h *HistoryDB) Delete(ctx context.Context, key string) error {
	return h.store.Delete(ctx, database.CollectionSeries, key)
}
