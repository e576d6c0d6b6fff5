package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/database"
	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/modules/universe"
)

// Repository stores portfolios and their blended price series
type Repository struct {
	store     database.DocumentStore
	historyDB *universe.HistoryDB
	log       zerolog.Logger
}

// NewRepository creates a new portfolio repository
func NewRepository(store database.DocumentStore, historyDB *universe.HistoryDB, log zerolog.Logger) *Repository {
	return &Repository{
		store:     store,
		historyDB: historyDB,
		log:       log.With().Str("repo", "portfolio").Logger(),
	}
}

// GetByID loads a portfolio together with its blended series.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Portfolio, error) {
	var p domain.Portfolio
	if err := r.store.Get(ctx, database.CollectionPortfolios, id, &p); err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			return nil, fmt.Errorf("portfolio %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load portfolio %s: %w", id, err)
	}

	prices, err := r.historyDB.LoadOrEmpty(ctx, universe.PortfolioSeriesKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for portfolio %s: %w", id, err)
	}
	p.Prices = prices
	return &p, nil
}

// ListIDs returns every stored portfolio id.
func (r *Repository) ListIDs(ctx context.Context) ([]string, error) {
	return r.store.Keys(ctx, database.CollectionPortfolios)
}

// Save writes the portfolio, its blended series and any new activity entries in one
// batch, so readers never see statistics that do not belong to the stored series.
// Callers serialize saves of the same portfolio.
func (r *Repository) Save(ctx context.Context, p *domain.Portfolio, activity ...domain.ActivityEntry) error {
	docs := []database.Document{{
		Collection: database.CollectionPortfolios,
		Key:        p.ID,
		Value:      p,
	}}
	if p.Prices != nil {
		docs = append(docs, r.historyDB.Document(universe.PortfolioSeriesKey(p.ID), p.Prices))
	}
	if len(activity) > 0 {
		doc, err := r.activityDocument(ctx, p.ID, activity)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	if err := r.store.PutMany(ctx, docs...); err != nil {
		return fmt.Errorf("failed to save portfolio %s: %w", p.ID, err)
	}
	r.log.Debug().
		Str("portfolio_id", p.ID).
		Int("holdings", len(p.Holdings)).
		Int("activity", len(activity)).
		Msg("Saved portfolio")
	return nil
}

// Delete removes a portfolio and its blended series. Its activity is kept, with
// the given entries appended.
func (r *Repository) Delete(ctx context.Context, id string, activity ...domain.ActivityEntry) error {
	if len(activity) > 0 {
		doc, err := r.activityDocument(ctx, id, activity)
		if err != nil {
			return err
		}
		if err := r.store.PutMany(ctx, doc); err != nil {
			return fmt.Errorf("failed to record activity of portfolio %s: %w", id, err)
		}
	}
	if err := r.historyDB.Delete(ctx, universe.PortfolioSeriesKey(id)); err != nil {
		return fmt.Errorf("failed to delete series of portfolio %s: %w", id, err)
	}
	if err := r.store.Delete(ctx, database.CollectionPortfolios, id); err != nil {
		return fmt.Errorf("failed to delete portfolio %s: %w", id, err)
	}
	return nil
}

// Activity returns the recorded activity of one portfolio, oldest first.
func (r *Repository) Activity(ctx context.Context, id string) ([]domain.ActivityEntry, error) {
	var entries []domain.ActivityEntry
	if err := r.store.Get(ctx, database.CollectionActivity, id, &entries); err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			return []domain.ActivityEntry{}, nil
		}
		return nil, fmt.Errorf("failed to load activity of portfolio %s: %w", id, err)
	}
	return entries, nil
}

// AllActivity returns the activity of every portfolio, deleted ones included,
// ordered by timestamp.
func (r *Repository) AllActivity(ctx context.Context) ([]domain.ActivityEntry, error) {
	ids, err := r.store.Keys(ctx, database.CollectionActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	all := []domain.ActivityEntry{}
	for _, id := range ids {
		entries, err := r.Activity(ctx, id)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all, nil
}

func (r *Repository) activityDocument(ctx context.Context, id string, activity []domain.ActivityEntry) (database.Document, error) {
	entries, err := r.Activity(ctx, id)
	if err != nil {
		return database.Document{}, err
	}
	return database.Document{
		Collection: database.CollectionActivity,
		Key:        id,
		Value:      append(entries, activity...),
	}, nil
}
