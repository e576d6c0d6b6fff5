package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/modules/portfolio"
	"github.com/aristath/portfolio-analytics/internal/modules/universe"
)

// InitializeRepositories creates the repositories over the container's store
func InitializeRepositories(container *Container, log zerolog.Logger) {
	container.HistoryDB = universe.NewHistoryDB(container.Store, log)
	container.StockRepo = universe.NewStockRepository(container.Store, container.HistoryDB, log)
	container.PortfolioRepo = portfolio.NewRepository(container.Store, container.HistoryDB, log)
}
