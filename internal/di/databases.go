package di

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/config"
	"github.com/aristath/portfolio-analytics/internal/database"
	"github.com/aristath/portfolio-analytics/internal/database/postgres"
)

// InitializeDatabases opens the document store: PostgreSQL when DATABASE_URL is set,
// otherwise documents.db under the data directory.
func InitializeDatabases(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		store, err := postgres.NewStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to initialize postgres store: %w", err)
		}
		container.PostgresPool = pool
		container.Store = store
		container.Health = store

		log.Info().Msg("Using PostgreSQL document store")
		return container, nil
	}

	db, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "documents.db"),
		Profile: database.ProfileStandard,
		Name:    "documents",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize documents database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate documents database: %w", err)
	}

	container.SQLiteDB = db
	container.Store = database.NewSQLiteStore(db)
	container.Health = db

	log.Info().Str("path", db.Path()).Msg("Using SQLite document store")
	return container, nil
}
