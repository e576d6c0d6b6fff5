// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aristath/portfolio-analytics/internal/clients/alphavantage"
	"github.com/aristath/portfolio-analytics/internal/database"
	"github.com/aristath/portfolio-analytics/internal/domain"
	"github.com/aristath/portfolio-analytics/internal/modules/portfolio"
	"github.com/aristath/portfolio-analytics/internal/modules/statistics"
	"github.com/aristath/portfolio-analytics/internal/modules/universe"
	"github.com/aristath/portfolio-analytics/internal/server"
	"github.com/aristath/portfolio-analytics/internal/utils"
)

// Container holds all dependencies for the application.
//
// Exactly one of SQLiteDB and PostgresPool is set, depending on DATABASE_URL.
type Container struct {
	// Storage
	SQLiteDB     *database.DB
	PostgresPool *pgxpool.Pool
	Store        database.DocumentStore
	Health       server.HealthChecker

	// Clients
	AlphaVantageClient *alphavantage.Client

	// Repositories
	HistoryDB     *universe.HistoryDB
	StockRepo     *universe.StockRepository
	PortfolioRepo *portfolio.Repository

	// Services
	Clock            domain.Clock
	StockLocks       *utils.KeyedMutex
	Calculator       *statistics.Calculator
	PriceValidator   *universe.PriceValidator
	SyncService      *universe.HistoricalSyncService
	StockService     *universe.StockService
	PortfolioService *portfolio.PortfolioService
}

// Close releases the storage backend.
func (c *Container) Close() error {
	if c.PostgresPool != nil {
		c.PostgresPool.Close()
	}
	if c.SQLiteDB != nil {
		return c.SQLiteDB.Close()
	}
	return nil
}
